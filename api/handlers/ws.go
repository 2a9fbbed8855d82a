package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BaSui01/onboardflow/session"
	"github.com/BaSui01/onboardflow/types"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 帧类型
const (
	FrameSession = "session"
	FrameReply   = "reply"
	FrameError   = "error"
)

// SocketFrame 服务端发往客户端的消息
type SocketFrame struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id"`
	Reply     *session.Response `json:"reply,omitempty"`
	Error     *ErrorInfo        `json:"error,omitempty"`
}

// ChatSocketHandler websocket 聊天入口。每条入站文本帧是一个 EventRequest，
// 每个事件对应一条 reply 或 error 帧，顺序与输入一致。
type ChatSocketHandler struct {
	sessions       SessionService
	originPatterns []string
	readLimit      int64
	logger         *zap.Logger
}

// NewChatSocketHandler 创建处理器。originPatterns 为空时只接受同源连接
func NewChatSocketHandler(sessions SessionService, originPatterns []string, readLimit int64, logger *zap.Logger) *ChatSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readLimit <= 0 {
		readLimit = DefaultMaxUploadBytes
	}
	return &ChatSocketHandler{
		sessions:       sessions,
		originPatterns: originPatterns,
		readLimit:      readLimit,
		logger:         logger.With(zap.String("component", "chat_socket")),
	}
}

// Register 挂载路由
func (h *ChatSocketHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws", h.HandleWS)
}

// HandleWS GET /api/v1/ws?session_id=...，不带 session_id 时分配新会话
func (h *ChatSocketHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		id = uuid.NewString()
	}
	if !ValidSessionID(id) {
		WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrInvalidRequest, "invalid session id", h.logger)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		// Accept 已经写好了错误响应
		h.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(h.readLimit)

	logger := h.logger.With(zap.String("session_id", id))
	logger.Debug("websocket connected")

	ctx := r.Context()
	if err := wsjson.Write(ctx, conn, SocketFrame{Type: FrameSession, SessionID: id}); err != nil {
		return
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			h.logClose(logger, err)
			return
		}
		if typ != websocket.MessageText {
			if err := h.writeError(ctx, conn, id, types.NewError(types.ErrInvalidRequest, "binary frames are not supported")); err != nil {
				return
			}
			continue
		}

		frame, closed := h.handleFrame(ctx, id, data)
		if err := wsjson.Write(ctx, conn, frame); err != nil {
			h.logClose(logger, err)
			return
		}
		if closed {
			conn.Close(websocket.StatusNormalClosure, "session closed")
			return
		}
	}
}

// handleFrame 处理一条入站消息；closed 表示会话已结束，连接应关闭
func (h *ChatSocketHandler) handleFrame(ctx context.Context, id string, data []byte) (SocketFrame, bool) {
	var req EventRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorFrame(id, types.NewError(types.ErrInvalidRequest, "invalid JSON frame").WithCause(err)), false
	}
	ev, err := req.Event()
	if err != nil {
		return errorFrame(id, ToAPIError(err)), false
	}

	resp, err := h.sessions.HandleEvent(ctx, id, ev)
	if err != nil {
		return errorFrame(id, eventError(err)), errors.Is(err, session.ErrClosed)
	}
	return SocketFrame{Type: FrameReply, SessionID: id, Reply: &resp}, false
}

func (h *ChatSocketHandler) writeError(ctx context.Context, conn *websocket.Conn, id string, err *types.Error) error {
	return wsjson.Write(ctx, conn, errorFrame(id, err))
}

func (h *ChatSocketHandler) logClose(logger *zap.Logger, err error) {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		logger.Debug("websocket closed")
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Debug("websocket closed")
		return
	}
	logger.Warn("websocket error", zap.Error(err))
}

func errorFrame(id string, err *types.Error) SocketFrame {
	return SocketFrame{
		Type:      FrameError,
		SessionID: id,
		Error: &ErrorInfo{
			Code:       string(err.Code),
			Message:    err.Message,
			Field:      err.Field,
			Retryable:  err.Retryable,
			HTTPStatus: HTTPStatus(err),
		},
	}
}
