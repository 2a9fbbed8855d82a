package workflow

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/BaSui01/onboardflow/types"
)

// ErrorKind 工作流层错误类型
type ErrorKind int

const (
	// KindUnexpectedInput 当前状态不接受该输入，重新提示
	KindUnexpectedInput ErrorKind = iota + 1
	// KindIncompleteDraft 草稿缺少必填字段，不能提交
	KindIncompleteDraft
	// KindPersistenceUnavailable 存储不可用，本次提交失败，草稿保留
	KindPersistenceUnavailable
	// KindCancelled 阻塞操作被取消，回到操作前的状态
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnexpectedInput:
		return "UnexpectedInput"
	case KindIncompleteDraft:
		return "IncompleteDraft"
	case KindPersistenceUnavailable:
		return "PersistenceUnavailable"
	case KindCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// Error 工作流错误
type Error struct {
	Kind    ErrorKind
	State   State
	Missing []types.Field
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("workflow %s in %s", e.Kind, e.State)
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, f := range e.Missing {
			names[i] = string(f)
		}
		msg += " (missing " + strings.Join(names, ", ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is 按 Kind 匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) ToTypesError() *types.Error {
	switch e.Kind {
	case KindIncompleteDraft:
		te := types.NewError(types.ErrValidationFailed, e.Error()).
			WithHTTPStatus(http.StatusUnprocessableEntity)
		if len(e.Missing) > 0 {
			te = te.WithField(e.Missing[0])
		}
		return te
	case KindPersistenceUnavailable:
		return types.NewError(types.ErrPersistenceUnavailable, "record store is unavailable, the draft was kept").
			WithHTTPStatus(http.StatusServiceUnavailable).
			WithRetryable(true).
			WithCause(e.Cause)
	case KindCancelled:
		return types.NewError(types.ErrCancelled, "the operation was cancelled").
			WithHTTPStatus(http.StatusConflict).
			WithCause(e.Cause)
	}
	return types.NewError(types.ErrUnexpectedInput, e.Error()).
		WithHTTPStatus(http.StatusUnprocessableEntity)
}

// 便于 errors.Is 匹配的哨兵值
var (
	ErrUnexpectedInput        = &Error{Kind: KindUnexpectedInput}
	ErrIncompleteDraft        = &Error{Kind: KindIncompleteDraft}
	ErrPersistenceUnavailable = &Error{Kind: KindPersistenceUnavailable}
	ErrCancelled              = &Error{Kind: KindCancelled}
)
