package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/BaSui01/onboardflow/types"
)

// Config 校验规则配置
type Config struct {
	// 电话号码数字位数范围（含国家码）
	PhoneMinDigits int `yaml:"phone_min_digits" json:"phone_min_digits"`
	PhoneMaxDigits int `yaml:"phone_max_digits" json:"phone_max_digits"`

	// 姓名、职位的最大字符数
	MaxTextLength int `yaml:"max_text_length" json:"max_text_length"`
}

// DefaultConfig 返回默认校验配置
func DefaultConfig() Config {
	return Config{
		PhoneMinDigits: 10,
		PhoneMaxDigits: 15,
		MaxTextLength:  100,
	}
}

// Validator 纯函数式的字段校验器，可在多个会话间共享
type Validator struct {
	cfg Config
}

// New 创建校验器，非法配置回退为默认值
func New(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.PhoneMinDigits <= 0 {
		cfg.PhoneMinDigits = def.PhoneMinDigits
	}
	if cfg.PhoneMaxDigits <= 0 {
		cfg.PhoneMaxDigits = def.PhoneMaxDigits
	}
	if cfg.PhoneMaxDigits < cfg.PhoneMinDigits {
		cfg.PhoneMaxDigits = cfg.PhoneMinDigits
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = def.MaxTextLength
	}
	return &Validator{cfg: cfg}
}

// Config 返回生效中的配置
func (v *Validator) Config() Config { return v.cfg }

var (
	currencyWordRe = regexp.MustCompile(`(?i)(usd|inr|eur|gbp|aud|cad|sgd|aed|jpy|rupees?|dollars?|rs\.?)`)
	amountRe       = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

// ValidatePhone 去掉分隔符与国家码前缀的 '+'，返回纯数字的规范形式。
// 全角数字会先折叠为 ASCII。
func (v *Validator) ValidatePhone(raw string) (string, error) {
	s := strings.TrimSpace(width.Fold.String(raw))

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
		case isPhoneSeparator(r):
		default:
			return "", &PhoneError{
				Kind: PhoneInvalidCharacter,
				Char: r,
				Min:  v.cfg.PhoneMinDigits,
				Max:  v.cfg.PhoneMaxDigits,
			}
		}
	}

	digits := b.Len()
	if digits < v.cfg.PhoneMinDigits {
		return "", &PhoneError{Kind: PhoneTooShort, Digits: digits, Min: v.cfg.PhoneMinDigits, Max: v.cfg.PhoneMaxDigits}
	}
	if digits > v.cfg.PhoneMaxDigits {
		return "", &PhoneError{Kind: PhoneTooLong, Digits: digits, Min: v.cfg.PhoneMinDigits, Max: v.cfg.PhoneMaxDigits}
	}
	return b.String(), nil
}

func isPhoneSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '-', '.', '(', ')', '/':
		return true
	}
	return false
}

// ValidateSalary 去掉货币符号、货币代码与千分位分隔符后解析为非负数
func (v *Validator) ValidateSalary(raw string) (float64, error) {
	s := width.Fold.String(raw)
	s = currencyWordRe.ReplaceAllString(s, "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "/-")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Sc, r):
		case unicode.IsSpace(r), r == ',', r == '_', r == '\'':
		default:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if !amountRe.MatchString(cleaned) {
		return 0, &SalaryError{Kind: SalaryNotNumeric, Input: raw}
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &SalaryError{Kind: SalaryNotNumeric, Input: raw}
	}
	if f < 0 {
		return 0, &SalaryError{Kind: SalaryNegative, Input: raw}
	}
	if f == 0 {
		f = 0 // -0
	}
	return f, nil
}

// ValidateName 规范化姓名：NFC、去控制字符、合并空白
func (v *Validator) ValidateName(raw string) (string, error) {
	s := normalizeText(raw)
	if err := v.checkText(types.FieldName, s); err != nil {
		return "", err
	}
	if strings.IndexFunc(s, unicode.IsLetter) < 0 {
		return "", &FieldError{Field: types.FieldName, Kind: TextNoLetters}
	}
	return s, nil
}

// ValidateDesignation 规范化职位名称
func (v *Validator) ValidateDesignation(raw string) (string, error) {
	s := normalizeText(raw)
	if err := v.checkText(types.FieldDesignation, s); err != nil {
		return "", err
	}
	return s, nil
}

func (v *Validator) checkText(f types.Field, s string) error {
	if s == "" {
		return &FieldError{Field: f, Kind: TextEmpty}
	}
	if utf8.RuneCountInString(s) > v.cfg.MaxTextLength {
		return &FieldError{Field: f, Kind: TextTooLong, Max: v.cfg.MaxTextLength}
	}
	return nil
}

func normalizeText(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Apply 校验 raw 并写入 rec 的字段 f；失败时 rec 保持不变
func (v *Validator) Apply(rec *types.PartialRecord, f types.Field, raw string) error {
	switch f {
	case types.FieldName:
		s, err := v.ValidateName(raw)
		if err != nil {
			return err
		}
		rec.Name = &s
	case types.FieldPhone:
		s, err := v.ValidatePhone(raw)
		if err != nil {
			return err
		}
		rec.Phone = &s
	case types.FieldDesignation:
		s, err := v.ValidateDesignation(raw)
		if err != nil {
			return err
		}
		rec.Designation = &s
	case types.FieldSalary:
		n, err := v.ValidateSalary(raw)
		if err != nil {
			return err
		}
		rec.Salary = &n
	default:
		return &FieldError{Field: f, Kind: TextEmpty}
	}
	return nil
}

// Candidate 逐字段校验抽取结果。通过的字段进入返回的记录，
// 失败的字段记录在 errs 中；缺失的字段两边都不出现。
func (v *Validator) Candidate(c types.CandidateRecord) (types.PartialRecord, map[types.Field]error) {
	var rec types.PartialRecord
	errs := make(map[types.Field]error)
	for _, f := range types.AllFields {
		raw, ok := c.Get(f)
		if !ok {
			continue
		}
		if err := v.Apply(&rec, f, raw); err != nil {
			errs[f] = err
		}
	}
	return rec, errs
}

var salaryPrinter = message.NewPrinter(language.English)

// FormatSalary 以两位小数和千分位展示薪资
func FormatSalary(n float64) string {
	return salaryPrinter.Sprintf("%.2f", n)
}
