// Package channel 提供会话使用的有界 FIFO 邮箱。
package channel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed 邮箱已关闭
	ErrClosed = errors.New("mailbox is closed")
	// ErrFull 邮箱已满
	ErrFull = errors.New("mailbox is full")
)

// Mailbox 有界缓冲的 FIFO 队列。关闭后拒绝新消息，已入队的消息可通过 Drain 取出。
type Mailbox[T any] struct {
	ch     chan T
	mu     sync.RWMutex
	closed bool

	sends    atomic.Int64
	receives atomic.Int64
	rejected atomic.Int64
}

// NewMailbox 创建容量为 size 的邮箱，size < 1 时按 1 处理
func NewMailbox[T any](size int) *Mailbox[T] {
	if size < 1 {
		size = 1
	}
	return &Mailbox[T]{ch: make(chan T, size)}
}

// TrySend 非阻塞入队
func (m *Mailbox[T]) TrySend(v T) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		m.rejected.Add(1)
		return ErrClosed
	}
	select {
	case m.ch <- v:
		m.sends.Add(1)
		return nil
	default:
		m.rejected.Add(1)
		return ErrFull
	}
}

// Receive 阻塞出队。ok 为 false 表示 ctx 已结束或邮箱已关闭且为空。
func (m *Mailbox[T]) Receive(ctx context.Context) (T, bool) {
	var zero T
	select {
	case v, ok := <-m.ch:
		if ok {
			m.receives.Add(1)
		}
		return v, ok
	case <-ctx.Done():
		return zero, false
	}
}

// C 返回底层只读通道，供 select 使用
func (m *Mailbox[T]) C() <-chan T { return m.ch }

// Close 关闭邮箱，重复调用无副作用
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.ch)
}

// Drain 取出剩余消息。只应在 Close 之后调用。
func (m *Mailbox[T]) Drain() []T {
	var out []T
	for v := range m.ch {
		out = append(out, v)
	}
	return out
}

// Len 当前排队数
func (m *Mailbox[T]) Len() int { return len(m.ch) }

// Cap 容量
func (m *Mailbox[T]) Cap() int { return cap(m.ch) }

// Stats 返回邮箱统计
func (m *Mailbox[T]) Stats() Stats {
	return Stats{
		Capacity: cap(m.ch),
		Length:   len(m.ch),
		Sends:    m.sends.Load(),
		Receives: m.receives.Load(),
		Rejected: m.rejected.Load(),
	}
}

// Stats 邮箱统计
type Stats struct {
	Capacity int   `json:"capacity"`
	Length   int   `json:"length"`
	Sends    int64 `json:"sends"`
	Receives int64 `json:"receives"`
	Rejected int64 `json:"rejected"`
}
