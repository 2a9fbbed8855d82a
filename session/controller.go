package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/chat"
	"github.com/BaSui01/onboardflow/workflow"
)

// Factory 为新会话创建工作流
type Factory func(id string) *workflow.Workflow

// Observer 会话指标回调
type Observer interface {
	SessionsActive(n int)
	ObserveEvent(kind workflow.EventKind, outcome string, d time.Duration)
}

// Option 控制器选项
type Option func(*Controller)

// WithResponder 设置普通对话应答器
func WithResponder(r chat.Responder) Option {
	return func(c *Controller) {
		if r != nil {
			c.responder = r
		}
	}
}

// WithObserver 设置指标回调
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller 会话表。每个会话由独立的 actor 串行处理事件，会话之间互不阻塞。
type Controller struct {
	cfg       Config
	factory   Factory
	responder chat.Responder
	observer  Observer
	logger    *zap.Logger
	now       func() time.Time

	sessions sync.Map // id -> *actor
	count    atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  atomic.Bool
	stopped chan struct{}
}

// NewController 创建控制器并启动空闲扫描
func NewController(cfg Config, factory Factory, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:       cfg.withDefaults(),
		factory:   factory,
		responder: chat.Static{},
		logger:    zap.NewNop(),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "session_controller"))

	go c.sweepLoop()
	return c
}

// HandleEvent 把事件路由到会话，首次出现的 id 创建新的 Idle 会话。
// 返回的 error 只表示会话层失败（busy、limit、closed）；工作流错误在 Response.Error 中。
// ctx 只控制等待结果的时间，事件本身在会话的上下文中执行。
func (c *Controller) HandleEvent(ctx context.Context, id string, ev workflow.Event) (Response, error) {
	if c.closed.Load() {
		return Response{SessionID: id}, ErrClosed
	}
	a, created, err := c.getOrCreate(id)
	if err != nil {
		return Response{SessionID: id}, err
	}

	req, err := a.submit(ev)
	if err != nil {
		c.observeEvent(ev.Kind, outcomeOf(err), 0)
		return Response{SessionID: id, Reply: workflow.Reply{State: a.snapshot().State}}, err
	}

	select {
	case resp := <-req.reply:
		if resp.Error == ErrClosed {
			return resp, ErrClosed
		}
		if created {
			resp.Welcome = a.wf.Welcome()
		}
		return resp, nil
	case <-ctx.Done():
		return Response{SessionID: id}, ctx.Err()
	}
}

func (c *Controller) getOrCreate(id string) (*actor, bool, error) {
	if v, ok := c.sessions.Load(id); ok {
		return v.(*actor), false, nil
	}
	if c.count.Add(1) > int64(c.cfg.MaxSessions) {
		c.count.Add(-1)
		c.logger.Warn("session limit reached", zap.Int("max_sessions", c.cfg.MaxSessions))
		return nil, false, ErrLimit
	}

	a := newActor(c.ctx, id, c.factory(id), c)
	if v, loaded := c.sessions.LoadOrStore(id, a); loaded {
		c.count.Add(-1)
		a.cancel()
		return v.(*actor), false, nil
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		a.run()
	}()
	c.reportActive()
	c.logger.Debug("session created", zap.String("session_id", id))
	return a, true, nil
}

// Snapshot 返回会话快照
func (c *Controller) Snapshot(id string) (Snapshot, error) {
	v, ok := c.sessions.Load(id)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return v.(*actor).snapshot(), nil
}

// EndSession 结束会话：取消进行中的操作，排队事件以 closed 返回
func (c *Controller) EndSession(id string) error {
	v, ok := c.sessions.LoadAndDelete(id)
	if !ok {
		return ErrNotFound
	}
	c.teardown(v.(*actor), "ended")
	return nil
}

func (c *Controller) teardown(a *actor, reason string) {
	a.close()
	c.count.Add(-1)
	c.reportActive()
	c.logger.Info("session closed",
		zap.String("session_id", a.id),
		zap.String("reason", reason),
		zap.String("state", a.snapshot().State.String()))
}

// Len 当前会话数
func (c *Controller) Len() int { return int(c.count.Load()) }

// IDs 返回所有会话 id
func (c *Controller) IDs() []string {
	var ids []string
	c.sessions.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	return ids
}

// Sweep 回收空闲超过 IdleTimeout 的会话，返回回收数量
func (c *Controller) Sweep() int {
	cutoff := c.now().Add(-c.cfg.IdleTimeout)
	n := 0
	c.sessions.Range(func(k, v any) bool {
		a := v.(*actor)
		if a.pending.Load() > 0 || a.idleSince().After(cutoff) {
			return true
		}
		if c.sessions.CompareAndDelete(k, v) {
			c.teardown(a, "idle")
			n++
		}
		return true
	})
	return n
}

func (c *Controller) sweepLoop() {
	defer close(c.stopped)
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Info("idle sessions swept", zap.Int("count", n))
			}
		}
	}
}

// Close 结束所有会话并停止扫描
func (c *Controller) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.sessions.Range(func(k, v any) bool {
		if c.sessions.CompareAndDelete(k, v) {
			c.teardown(v.(*actor), "shutdown")
		}
		return true
	})
	c.cancel()
	<-c.stopped
	c.wg.Wait()
	return nil
}

func (c *Controller) reportActive() {
	if c.observer != nil {
		c.observer.SessionsActive(c.Len())
	}
}

func (c *Controller) observeEvent(kind workflow.EventKind, outcome string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveEvent(kind, outcome, d)
	}
}

func outcomeOf(err error) string {
	switch err {
	case ErrBusy:
		return string(ErrBusy.Code)
	case ErrClosed:
		return string(ErrClosed.Code)
	}
	return "error"
}
