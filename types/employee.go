package types

import (
	"strconv"
	"strings"
	"time"
)

// Field 员工记录字段名
type Field string

const (
	FieldName        Field = "name"
	FieldPhone       Field = "phone"
	FieldDesignation Field = "designation"
	FieldSalary      Field = "salary"
)

// AllFields 按采集顺序列出全部字段
var AllFields = []Field{FieldName, FieldPhone, FieldDesignation, FieldSalary}

// ParseField 解析字段名，大小写与常见别名均可
func ParseField(s string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "full name", "fullname", "employee name":
		return FieldName, true
	case "phone", "phone number", "mobile", "contact", "phone_number":
		return FieldPhone, true
	case "designation", "title", "role", "job title", "position":
		return FieldDesignation, true
	case "salary", "pay", "ctc", "compensation":
		return FieldSalary, true
	}
	return "", false
}

// Label 返回字段的展示名称（与表格列名一致）
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldPhone:
		return "Phone"
	case FieldDesignation:
		return "Designation"
	case FieldSalary:
		return "Salary"
	}
	return string(f)
}

// Valid 检查字段名是否已知
func (f Field) Valid() bool {
	switch f {
	case FieldName, FieldPhone, FieldDesignation, FieldSalary:
		return true
	}
	return false
}

// EmployeeRecord 已校验的员工记录，所有值均为规范化形式。
// 提交到存储后不可再修改。
type EmployeeRecord struct {
	Name        string    `json:"name" bson:"name"`
	Phone       string    `json:"phone" bson:"phone"`
	Designation string    `json:"designation" bson:"designation"`
	Salary      float64   `json:"salary" bson:"salary"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Value 返回字段的字符串形式
func (r EmployeeRecord) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldPhone:
		return r.Phone
	case FieldDesignation:
		return r.Designation
	case FieldSalary:
		return FormatSalaryPlain(r.Salary)
	}
	return ""
}

// FormatSalaryPlain 以不带千分位的形式输出薪资，供存储列与唯一键使用。
// 输出可被 ParseFloat 无损还原，不做舍入。
func FormatSalaryPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PartialRecord 字段全部可选的草稿记录，已填写的值均经过校验与规范化
type PartialRecord struct {
	Name        *string  `json:"name,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Designation *string  `json:"designation,omitempty"`
	Salary      *float64 `json:"salary,omitempty"`
}

// Has 判断字段是否已填写
func (p PartialRecord) Has(f Field) bool {
	switch f {
	case FieldName:
		return p.Name != nil && *p.Name != ""
	case FieldPhone:
		return p.Phone != nil && *p.Phone != ""
	case FieldDesignation:
		return p.Designation != nil && *p.Designation != ""
	case FieldSalary:
		return p.Salary != nil
	}
	return false
}

// Get 返回字段的字符串形式，未填写时为空串
func (p PartialRecord) Get(f Field) string {
	if !p.Has(f) {
		return ""
	}
	switch f {
	case FieldName:
		return *p.Name
	case FieldPhone:
		return *p.Phone
	case FieldDesignation:
		return *p.Designation
	case FieldSalary:
		return FormatSalaryPlain(*p.Salary)
	}
	return ""
}

// Missing 返回 required 中尚未填写的字段，保持给定顺序
func (p PartialRecord) Missing(required []Field) []Field {
	var out []Field
	for _, f := range required {
		if !p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Empty 判断是否一个字段都没有
func (p PartialRecord) Empty() bool {
	for _, f := range AllFields {
		if p.Has(f) {
			return false
		}
	}
	return true
}

// Clone 深拷贝，避免多个 Draft 共享指针
func (p PartialRecord) Clone() PartialRecord {
	var out PartialRecord
	if p.Name != nil {
		v := *p.Name
		out.Name = &v
	}
	if p.Phone != nil {
		v := *p.Phone
		out.Phone = &v
	}
	if p.Designation != nil {
		v := *p.Designation
		out.Designation = &v
	}
	if p.Salary != nil {
		v := *p.Salary
		out.Salary = &v
	}
	return out
}

// Record 在姓名、电话、薪资齐全时生成 EmployeeRecord；职位可为空
func (p PartialRecord) Record(now time.Time) (EmployeeRecord, bool) {
	if !p.Has(FieldName) || !p.Has(FieldPhone) || !p.Has(FieldSalary) {
		return EmployeeRecord{}, false
	}
	rec := EmployeeRecord{
		Name:      *p.Name,
		Phone:     *p.Phone,
		Salary:    *p.Salary,
		CreatedAt: now,
	}
	if p.Designation != nil {
		rec.Designation = *p.Designation
	}
	return rec, true
}

// CandidateRecord 抽取得到的原始候选值，尚未经过校验
type CandidateRecord struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Salary      *string `json:"salary,omitempty"`
}

// Get 返回字段原始值；空白值视为缺失
func (c CandidateRecord) Get(f Field) (string, bool) {
	var v *string
	switch f {
	case FieldName:
		v = c.Name
	case FieldPhone:
		v = c.Phone
	case FieldDesignation:
		v = c.Designation
	case FieldSalary:
		v = c.Salary
	}
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", false
	}
	return *v, true
}

// Set 写入字段原始值
func (c *CandidateRecord) Set(f Field, v string) {
	switch f {
	case FieldName:
		c.Name = &v
	case FieldPhone:
		c.Phone = &v
	case FieldDesignation:
		c.Designation = &v
	case FieldSalary:
		c.Salary = &v
	}
}

// Empty 判断是否没有任何可用字段
func (c CandidateRecord) Empty() bool {
	for _, f := range AllFields {
		if _, ok := c.Get(f); ok {
			return false
		}
	}
	return true
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string { return &s }

// FloatPtr 返回 float64 指针
func FloatPtr(v float64) *float64 { return &v }

// UniquenessKey 唯一键策略，决定哪些字段组合判定重复记录
type UniquenessKey string

const (
	KeyPhone        UniquenessKey = "phone"
	KeyName         UniquenessKey = "name"
	KeyPhoneAndName UniquenessKey = "phone+name"
)

// Valid 检查唯一键策略是否受支持
func (k UniquenessKey) Valid() bool {
	switch k {
	case KeyPhone, KeyName, KeyPhoneAndName:
		return true
	}
	return false
}

// Of 计算记录在该策略下的唯一键值。姓名部分不区分大小写。
func (k UniquenessKey) Of(r EmployeeRecord) string {
	switch k {
	case KeyName:
		return strings.ToLower(r.Name)
	case KeyPhoneAndName:
		return r.Phone + "|" + strings.ToLower(r.Name)
	default:
		return r.Phone
	}
}
