package workflow

import (
	"sync"
	"time"
)

// Transition 一次状态转换记录
type Transition struct {
	From  State     `json:"from"`
	To    State     `json:"to"`
	Event EventKind `json:"event"`
	At    time.Time `json:"at"`
	Error string    `json:"error,omitempty"`
}

// TransitionHistory 记录工作流走过的状态路径，超过容量时丢弃最早的记录
type TransitionHistory struct {
	mu      sync.RWMutex
	entries []Transition
	limit   int
}

// NewTransitionHistory 创建转换历史，limit <= 0 表示不限
func NewTransitionHistory(limit int) *TransitionHistory {
	return &TransitionHistory{limit: limit}
}

// Record 追加一条转换
func (h *TransitionHistory) Record(t Transition) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, t)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append(h.entries[:0:0], h.entries[len(h.entries)-h.limit:]...)
	}
}

// Entries 返回记录的副本
func (h *TransitionHistory) Entries() []Transition {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Transition, len(h.entries))
	copy(out, h.entries)
	return out
}

// Last 返回最近一次转换
func (h *TransitionHistory) Last() (Transition, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return Transition{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// CountTo 统计进入某类状态的次数
func (h *TransitionHistory) CountTo(kind StateKind) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, t := range h.entries {
		if t.To.Kind == kind {
			n++
		}
	}
	return n
}

// Len 记录条数
func (h *TransitionHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
