package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/chat"
	"github.com/BaSui01/onboardflow/internal/channel"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

// request 邮箱中的一个事件
type request struct {
	ev       workflow.Event
	reply    chan Response
	enqueued time.Time
}

// actor 持有一个会话：工作流只在 run 协程中访问，其余字段并发安全。
type actor struct {
	id        string
	wf        *workflow.Workflow
	ctrl      *Controller
	mailbox   *channel.Mailbox[*request]
	createdAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	opMu     sync.Mutex
	opCancel context.CancelFunc

	pending  atomic.Int32
	lastSeen atomic.Int64
	snap     atomic.Pointer[Snapshot]

	histMu  sync.RWMutex
	history []chat.Turn

	logger *zap.Logger
}

func newActor(parent context.Context, id string, wf *workflow.Workflow, c *Controller) *actor {
	ctx, cancel := context.WithCancel(parent)
	now := c.now()
	a := &actor{
		id:        id,
		wf:        wf,
		ctrl:      c,
		mailbox:   channel.NewMailbox[*request](c.cfg.MailboxSize),
		createdAt: now,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		logger:    c.logger.With(zap.String("session_id", id)),
	}
	a.touch(now)
	a.publish()
	return a
}

func (a *actor) touch(t time.Time) { a.lastSeen.Store(t.UnixNano()) }

func (a *actor) idleSince() time.Time { return time.Unix(0, a.lastSeen.Load()) }

// submit 把事件放入邮箱。取消请求会先中断正在进行的操作。
func (a *actor) submit(ev workflow.Event) (*request, error) {
	if a.ctx.Err() != nil {
		return nil, ErrClosed
	}
	cancel := ev.IsCancel()
	if a.ctrl.cfg.BusyPolicy == PolicyReject && !cancel && a.pending.Load() > 0 {
		return nil, ErrBusy
	}
	if cancel {
		a.cancelInFlight()
	}

	req := &request{ev: ev, reply: make(chan Response, 1), enqueued: a.ctrl.now()}
	a.pending.Add(1)
	if err := a.mailbox.TrySend(req); err != nil {
		a.pending.Add(-1)
		if errors.Is(err, channel.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, ErrBusy
	}
	a.touch(req.enqueued)
	return req, nil
}

func (a *actor) cancelInFlight() {
	a.opMu.Lock()
	defer a.opMu.Unlock()
	if a.opCancel != nil {
		a.logger.Debug("cancelling in-flight operation")
		a.opCancel()
	}
}

// run 按到达顺序逐个处理事件
func (a *actor) run() {
	defer close(a.done)
	for {
		select {
		case <-a.ctx.Done():
			return
		case req, ok := <-a.mailbox.C():
			if !ok {
				return
			}
			if a.ctx.Err() != nil {
				a.reject(req)
				continue
			}
			a.process(req)
		}
	}
}

func (a *actor) process(req *request) {
	start := a.ctrl.now()
	opCtx, cancel := context.WithCancel(a.ctx)
	a.opMu.Lock()
	a.opCancel = cancel
	a.opMu.Unlock()
	defer func() {
		a.opMu.Lock()
		a.opCancel = nil
		a.opMu.Unlock()
		cancel()
	}()

	resp := a.handle(opCtx, req.ev)

	a.pending.Add(-1)
	a.touch(a.ctrl.now())
	a.publish()
	a.ctrl.observeEvent(req.ev.Kind, outcome(resp), a.ctrl.now().Sub(start))
	req.reply <- resp
}

func (a *actor) handle(ctx context.Context, ev workflow.Event) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("session handler panic recovered", zap.Any("panic", r), zap.Stack("stack"))
			resp = Response{
				SessionID: a.id,
				Reply:     workflow.Reply{State: a.wf.State(), Message: "Something went wrong. Please try again."},
				Error:     types.NewError(types.ErrInternalError, fmt.Sprintf("panic: %v", r)),
			}
		}
	}()

	reply := a.wf.Handle(ctx, ev)
	if reply.Passthrough {
		msg, err := a.ctrl.responder.Respond(ctx, a.History(), ev.Value)
		if err != nil {
			a.logger.Debug("chat responder failed", zap.Error(err))
			msg = "The request was cancelled."
		}
		reply.Message = msg
	}
	a.record(ev, reply.Message)

	resp = Response{SessionID: a.id, Reply: reply}
	if reply.Err != nil {
		if te, ok := types.AsError(reply.Err); ok {
			resp.Error = te
		} else {
			resp.Error = types.NewError(types.ErrInternalError, reply.Err.Error()).WithCause(reply.Err)
		}
	}
	return resp
}

// record 追加一问一答到对话历史
func (a *actor) record(ev workflow.Event, answer string) {
	now := a.ctrl.now()
	a.histMu.Lock()
	defer a.histMu.Unlock()
	a.history = append(a.history,
		chat.Turn{Role: chat.RoleUser, Content: describe(ev), At: now},
		chat.Turn{Role: chat.RoleAssistant, Content: answer, At: now},
	)
	if n := a.ctrl.cfg.HistoryLimit; n > 0 && len(a.history) > n {
		a.history = append([]chat.Turn(nil), a.history[len(a.history)-n:]...)
	}
}

// History 返回对话历史的副本
func (a *actor) History() []chat.Turn {
	a.histMu.RLock()
	defer a.histMu.RUnlock()
	return append([]chat.Turn(nil), a.history...)
}

func (a *actor) publish() {
	a.snap.Store(&Snapshot{
		SessionID:   a.id,
		State:       a.wf.State(),
		Draft:       a.wf.Draft(),
		Pending:     a.wf.Pending(),
		Transitions: a.wf.History().Entries(),
		CreatedAt:   a.createdAt,
	})
}

// snapshot 组合最近一次发布的工作流快照与实时字段
func (a *actor) snapshot() Snapshot {
	s := *a.snap.Load()
	s.History = a.History()
	s.LastSeen = a.idleSince()
	s.Queued = int(a.pending.Load())
	return s
}

// close 结束会话：取消进行中的操作，关闭邮箱并用 closed 回复剩余事件
func (a *actor) close() {
	a.cancel()
	a.mailbox.Close()
	<-a.done
	for _, req := range a.mailbox.Drain() {
		a.reject(req)
	}
}

func (a *actor) reject(req *request) {
	a.pending.Add(-1)
	req.reply <- Response{
		SessionID: a.id,
		Reply:     workflow.Reply{State: a.wf.State(), Message: "This session has ended."},
		Error:     ErrClosed,
	}
}

func describe(ev workflow.Event) string {
	switch ev.Kind {
	case workflow.EventText:
		return ev.Value
	case workflow.EventFileUpload:
		return fmt.Sprintf("[uploaded %s, %d bytes]", ev.FileName, len(ev.Data))
	case workflow.EventFieldEdit:
		return fmt.Sprintf("[edit %s = %s]", ev.Field, ev.Value)
	}
	return "[" + string(ev.Kind) + "]"
}

func outcome(r Response) string {
	switch {
	case r.Error != nil:
		return string(r.Error.Code)
	case r.Passthrough:
		return "chat"
	}
	return "ok"
}
