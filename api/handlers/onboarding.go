package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/BaSui01/onboardflow/session"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes 表格上传的默认上限
const DefaultMaxUploadBytes int64 = 10 << 20

const maxSessionIDLen = 128

// SessionService 会话控制器的 HTTP 视角，由 *session.Controller 实现
type SessionService interface {
	HandleEvent(ctx context.Context, id string, ev workflow.Event) (session.Response, error)
	Snapshot(id string) (session.Snapshot, error)
	EndSession(id string) error
}

// EventRequest 事件请求体。data 为 base64（JSON 中 []byte 的标准编码）
type EventRequest struct {
	Kind     workflow.EventKind `json:"kind"`
	Value    string             `json:"value,omitempty"`
	Field    types.Field        `json:"field,omitempty"`
	FileName string             `json:"filename,omitempty"`
	Data     []byte             `json:"data,omitempty"`
}

// Event 转换为工作流事件并检查结构
func (r EventRequest) Event() (workflow.Event, error) {
	ev := workflow.Event{
		Kind:     r.Kind,
		Value:    r.Value,
		Field:    r.Field,
		FileName: r.FileName,
		Data:     r.Data,
	}
	if ev.Kind == "" {
		ev.Kind = workflow.EventText
	}
	if err := ev.Validate(); err != nil {
		return workflow.Event{}, types.NewError(types.ErrInvalidRequest, err.Error())
	}
	return ev, nil
}

// OnboardingHandler 入职会话的 REST 接口
type OnboardingHandler struct {
	sessions  SessionService
	maxUpload int64
	logger    *zap.Logger
}

// NewOnboardingHandler 创建处理器，maxUpload <= 0 时使用 DefaultMaxUploadBytes
func NewOnboardingHandler(sessions SessionService, maxUpload int64, logger *zap.Logger) *OnboardingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &OnboardingHandler{
		sessions:  sessions,
		maxUpload: maxUpload,
		logger:    logger.With(zap.String("component", "onboarding_handler")),
	}
}

// Register 挂载路由
func (h *OnboardingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/sessions", h.HandleCreate)
	mux.HandleFunc("POST /api/v1/sessions/{id}/events", h.HandleEvent)
	mux.HandleFunc("POST /api/v1/sessions/{id}/upload", h.HandleUpload)
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.HandleGet)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", h.HandleDelete)
}

// HandleCreate 分配一个新的会话 id，会话在第一个事件到达时创建
func (h *OnboardingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusCreated, Response{
		Success:   true,
		Data:      map[string]string{"session_id": uuid.NewString()},
		Timestamp: time.Now(),
		RequestID: requestID(r),
	})
}

// HandleEvent POST /api/v1/sessions/{id}/events
func (h *OnboardingHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	var req EventRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	ev, err := req.Event()
	if err != nil {
		WriteError(w, r, ToAPIError(err), h.logger)
		return
	}
	h.dispatch(w, r, id, ev)
}

// HandleUpload POST /api/v1/sessions/{id}/upload，multipart 字段 file
func (h *OnboardingHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeUploadError(w, r, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeUploadError(w, r, err)
		return
	}
	if len(data) == 0 {
		WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrInvalidRequest, "uploaded file is empty", h.logger)
		return
	}
	h.dispatch(w, r, id, workflow.FileUpload(header.Filename, data))
}

// HandleGet GET /api/v1/sessions/{id}
func (h *OnboardingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		WriteError(w, r, ToAPIError(err), h.logger)
		return
	}
	WriteSuccess(w, r, snap)
}

// HandleDelete DELETE /api/v1/sessions/{id}
func (h *OnboardingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.EndSession(id); err != nil {
		WriteError(w, r, ToAPIError(err), h.logger)
		return
	}
	h.logger.Info("session ended by client", zap.String("session_id", id))
	WriteSuccess(w, r, map[string]any{"session_id": id, "ended": true})
}

func (h *OnboardingHandler) dispatch(w http.ResponseWriter, r *http.Request, id string, ev workflow.Event) {
	resp, err := h.sessions.HandleEvent(r.Context(), id, ev)
	if err != nil {
		WriteError(w, r, eventError(err), h.logger)
		return
	}
	// 工作流层面的错误（校验失败、重复记录等）属于正常对话结果，放在 data.error 中
	WriteSuccess(w, r, resp)
}

func (h *OnboardingHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !ValidSessionID(id) {
		WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrInvalidRequest, "invalid session id", h.logger)
		return "", false
	}
	return id, true
}

func (h *OnboardingHandler) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "uploaded file too large").
			WithCause(err).WithHTTPStatus(http.StatusRequestEntityTooLarge), h.logger)
	case errors.Is(err, http.ErrMissingFile):
		WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrInvalidRequest, "multipart field \"file\" is required", h.logger)
	default:
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "invalid multipart upload").WithCause(err), h.logger)
	}
}

// ValidSessionID 会话 id 只允许字母、数字、'-'、'_'、'.'
func ValidSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// eventError 把会话层与 context 错误转换为 API 错误
func eventError(err error) *types.Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return types.NewError(types.ErrTimeout, "timed out waiting for the session").WithCause(err)
	case errors.Is(err, context.Canceled):
		return types.NewError(types.ErrCancelled, "request cancelled").WithCause(err)
	}
	return ToAPIError(err)
}
