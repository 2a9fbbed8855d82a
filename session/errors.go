package session

import (
	"net/http"

	"github.com/BaSui01/onboardflow/types"
)

// 会话层错误，统一使用 *types.Error
var (
	ErrBusy = types.NewError(types.ErrSessionBusy, "session is busy with another request").
		WithHTTPStatus(http.StatusTooManyRequests).WithRetryable(true)
	ErrNotFound = types.NewError(types.ErrSessionNotFound, "session not found").
			WithHTTPStatus(http.StatusNotFound)
	ErrLimit = types.NewError(types.ErrSessionLimit, "too many active sessions").
			WithHTTPStatus(http.StatusServiceUnavailable).WithRetryable(true)
	ErrClosed = types.NewError(types.ErrSessionClosed, "session closed").
			WithHTTPStatus(http.StatusGone)
)
