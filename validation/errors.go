package validation

import (
	"fmt"
	"net/http"

	"github.com/BaSui01/onboardflow/types"
)

// PhoneErrorKind 电话号码校验失败的类型
type PhoneErrorKind int

const (
	PhoneTooShort PhoneErrorKind = iota + 1
	PhoneTooLong
	PhoneInvalidCharacter
)

func (k PhoneErrorKind) String() string {
	switch k {
	case PhoneTooShort:
		return "TooShort"
	case PhoneTooLong:
		return "TooLong"
	case PhoneInvalidCharacter:
		return "InvalidCharacter"
	}
	return "Unknown"
}

// PhoneError 电话号码校验错误
type PhoneError struct {
	Kind   PhoneErrorKind
	Digits int
	Min    int
	Max    int
	Char   rune
}

func (e *PhoneError) Error() string {
	switch e.Kind {
	case PhoneTooShort:
		return fmt.Sprintf("phone number is too short: %d digits, need at least %d", e.Digits, e.Min)
	case PhoneTooLong:
		return fmt.Sprintf("phone number is too long: %d digits, at most %d allowed", e.Digits, e.Max)
	case PhoneInvalidCharacter:
		return fmt.Sprintf("phone number contains an invalid character %q", e.Char)
	}
	return "invalid phone number"
}

// Is 按 Kind 匹配，便于 errors.Is(err, &PhoneError{Kind: PhoneTooShort})
func (e *PhoneError) Is(target error) bool {
	t, ok := target.(*PhoneError)
	return ok && t.Kind == e.Kind
}

func (e *PhoneError) ToTypesError() *types.Error {
	return types.NewError(types.ErrValidationFailed, e.Error()).
		WithHTTPStatus(http.StatusUnprocessableEntity).
		WithField(types.FieldPhone)
}

// SalaryErrorKind 薪资校验失败的类型
type SalaryErrorKind int

const (
	SalaryNotNumeric SalaryErrorKind = iota + 1
	SalaryNegative
)

func (k SalaryErrorKind) String() string {
	switch k {
	case SalaryNotNumeric:
		return "NotNumeric"
	case SalaryNegative:
		return "Negative"
	}
	return "Unknown"
}

// SalaryError 薪资校验错误
type SalaryError struct {
	Kind  SalaryErrorKind
	Input string
}

func (e *SalaryError) Error() string {
	switch e.Kind {
	case SalaryNotNumeric:
		return fmt.Sprintf("salary %q is not a number", e.Input)
	case SalaryNegative:
		return fmt.Sprintf("salary %q must not be negative", e.Input)
	}
	return "invalid salary"
}

func (e *SalaryError) Is(target error) bool {
	t, ok := target.(*SalaryError)
	return ok && t.Kind == e.Kind
}

func (e *SalaryError) ToTypesError() *types.Error {
	return types.NewError(types.ErrValidationFailed, e.Error()).
		WithHTTPStatus(http.StatusUnprocessableEntity).
		WithField(types.FieldSalary)
}

// TextErrorKind 文本字段（姓名、职位）校验失败的类型
type TextErrorKind int

const (
	TextEmpty TextErrorKind = iota + 1
	TextTooLong
	TextNoLetters
)

// FieldError 文本字段校验错误
type FieldError struct {
	Field types.Field
	Kind  TextErrorKind
	Max   int
}

func (e *FieldError) Error() string {
	label := e.Field.Label()
	switch e.Kind {
	case TextEmpty:
		return fmt.Sprintf("%s must not be empty", label)
	case TextTooLong:
		return fmt.Sprintf("%s is too long (max %d characters)", label, e.Max)
	case TextNoLetters:
		return fmt.Sprintf("%s must contain at least one letter", label)
	}
	return fmt.Sprintf("invalid %s", label)
}

func (e *FieldError) Is(target error) bool {
	t, ok := target.(*FieldError)
	return ok && t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

func (e *FieldError) ToTypesError() *types.Error {
	return types.NewError(types.ErrValidationFailed, e.Error()).
		WithHTTPStatus(http.StatusUnprocessableEntity).
		WithField(e.Field)
}
