package extraction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/BaSui01/onboardflow/types"
)

// Extractor 把自由文本抽取为候选员工记录。
// 实现必须遵守：返回的错误总是 *Error，且不会 panic 越过边界。
type Extractor interface {
	Extract(ctx context.Context, text string) (types.CandidateRecord, error)
}

// ExtractorFunc 函数适配器
type ExtractorFunc func(ctx context.Context, text string) (types.CandidateRecord, error)

func (f ExtractorFunc) Extract(ctx context.Context, text string) (types.CandidateRecord, error) {
	return f(ctx, text)
}

// Observer 接收抽取结果的观测数据（指标收集）
type Observer interface {
	ObserveExtraction(outcome string, duration time.Duration)
}

// ErrorKind 抽取失败类型
type ErrorKind int

const (
	// KindTimeout 上游调用超过时限
	KindTimeout ErrorKind = iota + 1
	// KindUnparsableResponse 响应中找不到所需结构
	KindUnparsableResponse
	// KindUnavailable 上游不可用（鉴权失败、5xx、未配置）
	KindUnavailable
	// KindCancelled 会话关闭或用户取消
	KindCancelled
	// KindInvalidInput 输入为空或文件无法解析
	KindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "Timeout"
	case KindUnparsableResponse:
		return "UnparsableResponse"
	case KindUnavailable:
		return "Unavailable"
	case KindCancelled:
		return "Cancelled"
	case KindInvalidInput:
		return "InvalidInput"
	}
	return "Unknown"
}

// Error 抽取错误
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is 按 Kind 匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) ToTypesError() *types.Error {
	code, status := types.ErrExtractionFailed, http.StatusBadGateway
	switch e.Kind {
	case KindTimeout:
		code, status = types.ErrTimeout, http.StatusGatewayTimeout
	case KindCancelled:
		code, status = types.ErrCancelled, http.StatusConflict
	case KindInvalidInput:
		code, status = types.ErrInvalidRequest, http.StatusBadRequest
	}
	return types.NewError(code, e.Message).
		WithHTTPStatus(status).
		WithRetryable(e.Kind != KindInvalidInput).
		WithCause(e.Cause)
}

// 便于 errors.Is 匹配的哨兵值
var (
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrUnparsableResponse = &Error{Kind: KindUnparsableResponse}
	ErrUnavailable        = &Error{Kind: KindUnavailable}
	ErrCancelled          = &Error{Kind: KindCancelled}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
)

// AsError 把任意错误收敛为 *Error。未知错误视为上游不可用，
// 上下文错误按取消或超时归类。
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCancelled, Message: "extraction was cancelled", Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "extraction timed out", Cause: err}
	}
	return &Error{Kind: KindUnavailable, Message: "extraction service failed", Cause: err}
}
