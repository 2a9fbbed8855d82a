package session

import (
	"time"

	"github.com/BaSui01/onboardflow/chat"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

// Snapshot 会话的只读视图
type Snapshot struct {
	SessionID   string                `json:"session_id"`
	State       workflow.State        `json:"state"`
	Draft       *workflow.DraftView   `json:"draft,omitempty"`
	Pending     int                   `json:"pending,omitempty"`
	Queued      int                   `json:"queued"`
	History     []chat.Turn           `json:"history"`
	Transitions []workflow.Transition `json:"transitions"`
	CreatedAt   time.Time             `json:"created_at"`
	LastSeen    time.Time             `json:"last_seen"`
}

// Response 一次事件处理的结果
type Response struct {
	SessionID string `json:"session_id"`
	workflow.Reply
	// Welcome 只在会话首次创建时出现
	Welcome string       `json:"welcome,omitempty"`
	Error   *types.Error `json:"error,omitempty"`
}
