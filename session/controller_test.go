package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/onboardflow/chat"
	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/testutil"
	"github.com/BaSui01/onboardflow/testutil/fixtures"
	"github.com/BaSui01/onboardflow/testutil/mocks"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type recordingObserver struct {
	mu     sync.Mutex
	active []int
	events []string
}

func (o *recordingObserver) SessionsActive(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = append(o.active, n)
}

func (o *recordingObserver) ObserveEvent(kind workflow.EventKind, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, string(kind)+":"+outcome)
}

func (o *recordingObserver) Events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}

func factory(ex *mocks.MockExtractor, st store.RecordStore) Factory {
	return func(id string) *workflow.Workflow {
		return workflow.New(id, workflow.DefaultConfig(), nil, ex, st)
	}
}

func newTestController(t *testing.T, cfg Config, ex *mocks.MockExtractor, opts ...Option) *Controller {
	t.Helper()
	if ex == nil {
		ex = mocks.NewMockExtractor()
	}
	c := NewController(cfg, factory(ex, store.NewMemoryStore()), opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type result struct {
	resp Response
	err  error
}

func handleAsync(c *Controller, id string, ev workflow.Event) <-chan result {
	ch := make(chan result, 1)
	go func() {
		r, err := c.HandleEvent(context.Background(), id, ev)
		ch <- result{r, err}
	}()
	return ch
}

func upload() workflow.Event {
	return workflow.FileUpload("staff.csv", testutil.CSV(fixtures.SpreadsheetHeader(), fixtures.SpreadsheetRows()[0]))
}

func waitStarted(t *testing.T, ex *mocks.MockExtractor) {
	t.Helper()
	_, ok := testutil.WaitForChannel(ex.Started(), 2*time.Second)
	require.True(t, ok, "extraction did not start")
}

func waitQueued(t *testing.T, c *Controller, id string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		s, err := c.Snapshot(id)
		return err == nil && s.Queued == n
	}, 2*time.Second, 5*time.Millisecond)
}

func send(t *testing.T, c *Controller, id string, texts ...string) Response {
	t.Helper()
	var r Response
	for _, s := range texts {
		var err error
		r, err = c.HandleEvent(context.Background(), id, workflow.Text(s))
		require.NoError(t, err)
	}
	return r
}

func TestController_ManualScenario(t *testing.T) {
	c := newTestController(t, DefaultConfig(), nil)

	r, err := c.HandleEvent(context.Background(), "s1", workflow.Text("Onboard"))
	require.NoError(t, err)
	assert.NotEmpty(t, r.Welcome)
	assert.Equal(t, "s1", r.SessionID)
	assert.Equal(t, workflow.AwaitingInputMethod(), r.State)

	r = send(t, c, "s1", "manual", "Jane Doe", "12")
	assert.Empty(t, r.Welcome)
	require.NotNil(t, r.Error)
	assert.Equal(t, types.ErrValidationFailed, r.Error.Code)
	assert.Equal(t, workflow.CollectingManualField(types.FieldPhone), r.State)

	r = send(t, c, "s1", "555-123-4567", "Engineer", "85000")
	assert.Equal(t, workflow.ReviewingDraft(), r.State)
	require.NotNil(t, r.Draft)
	assert.Equal(t, "Jane Doe", r.Draft.Record.Get(types.FieldName))
	assert.Equal(t, "5551234567", r.Draft.Record.Get(types.FieldPhone))

	snap, err := c.Snapshot("s1")
	require.NoError(t, err)
	assert.Equal(t, workflow.ReviewingDraft(), snap.State)
	assert.Len(t, snap.History, 14)
	assert.Equal(t, 0, snap.Queued)
	assert.NotEmpty(t, snap.Transitions)
}

func TestController_PassthroughUsesResponder(t *testing.T) {
	provider := mocks.NewSuccessProvider("Hi! How can I help?")
	responder := chat.NewLLMResponder(provider, chat.Config{}, nil, nil)
	c := newTestController(t, DefaultConfig(), nil, WithResponder(responder))

	r := send(t, c, "s1", "hello there")
	assert.True(t, r.Passthrough)
	assert.Equal(t, "Hi! How can I help?", r.Message)
	assert.Equal(t, workflow.Idle(), r.State)
	assert.Equal(t, 1, provider.GetCallCount())

	snap, err := c.Snapshot("s1")
	require.NoError(t, err)
	require.Len(t, snap.History, 2)
	assert.Equal(t, "hello there", snap.History[0].Content)
	assert.Equal(t, "Hi! How can I help?", snap.History[1].Content)
}

func TestController_StaticFallback(t *testing.T) {
	c := newTestController(t, DefaultConfig(), nil)
	r := send(t, c, "s1", "what can you do?")
	assert.True(t, r.Passthrough)
	assert.Contains(t, r.Message, "Onboard")
}

func TestController_FIFOAndCancelPreemptsExtraction(t *testing.T) {
	ex := mocks.NewMockExtractor().WithBlock()
	c := newTestController(t, DefaultConfig(), ex)
	send(t, c, "s1", "Onboard")

	uploadCh := handleAsync(c, "s1", upload())
	waitStarted(t, ex)

	manualCh := handleAsync(c, "s1", workflow.Text("manual"))
	waitQueued(t, c, "s1", 2)

	cancelCh := handleAsync(c, "s1", workflow.Cancel())

	up := <-uploadCh
	require.NoError(t, up.err)
	require.NotNil(t, up.resp.Error)
	assert.Equal(t, types.ErrCancelled, up.resp.Error.Code)
	assert.Equal(t, workflow.AwaitingInputMethod(), up.resp.State)

	man := <-manualCh
	require.NoError(t, man.err)
	assert.Equal(t, workflow.CollectingManualField(types.FieldName), man.resp.State)

	can := <-cancelCh
	require.NoError(t, can.err)
	assert.Equal(t, workflow.Idle(), can.resp.State)

	r := send(t, c, "s1", "Onboard")
	assert.Equal(t, workflow.AwaitingInputMethod(), r.State)
	assert.Nil(t, r.Error)
}

func TestController_RejectPolicy(t *testing.T) {
	ex := mocks.NewMockExtractor().WithBlock()
	cfg := DefaultConfig()
	cfg.BusyPolicy = PolicyReject
	c := newTestController(t, cfg, ex)
	send(t, c, "s1", "Onboard")

	uploadCh := handleAsync(c, "s1", upload())
	waitStarted(t, ex)

	_, err := c.HandleEvent(context.Background(), "s1", workflow.Text("manual"))
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, types.ErrSessionBusy, types.GetErrorCode(err))

	r, err := c.HandleEvent(context.Background(), "s1", workflow.Text("cancel"))
	require.NoError(t, err)
	assert.Equal(t, workflow.Idle(), r.State)

	up := <-uploadCh
	require.NoError(t, up.err)
	assert.Equal(t, types.ErrCancelled, up.resp.Error.Code)
}

func TestController_QueueOverflowIsBusy(t *testing.T) {
	ex := mocks.NewMockExtractor().WithBlock()
	cfg := DefaultConfig()
	cfg.MailboxSize = 1
	c := newTestController(t, cfg, ex)
	send(t, c, "s1", "Onboard")

	uploadCh := handleAsync(c, "s1", upload())
	waitStarted(t, ex)

	queuedCh := handleAsync(c, "s1", workflow.Text("manual"))
	waitQueued(t, c, "s1", 2)

	_, err := c.HandleEvent(context.Background(), "s1", workflow.Text("upload"))
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, c.EndSession("s1"))
	up := <-uploadCh
	require.NoError(t, up.err)
	assert.Equal(t, types.ErrCancelled, up.resp.Error.Code)

	q := <-queuedCh
	assert.ErrorIs(t, q.err, ErrClosed)
}

func TestController_SessionsAreIndependent(t *testing.T) {
	ex := mocks.NewMockExtractor().WithBlock()
	c := newTestController(t, DefaultConfig(), ex)
	send(t, c, "a", "Onboard")

	uploadCh := handleAsync(c, "a", upload())
	waitStarted(t, ex)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r, err := c.HandleEvent(ctx, "b", workflow.Text("Onboard"))
	require.NoError(t, err)
	assert.Equal(t, workflow.AwaitingInputMethod(), r.State)

	require.NoError(t, c.EndSession("a"))
	<-uploadCh
}

func TestController_EndSession(t *testing.T) {
	c := newTestController(t, DefaultConfig(), nil)
	send(t, c, "s1", "Onboard", "manual", "Jane Doe")
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.EndSession("s1"))
	assert.Equal(t, 0, c.Len())

	_, err := c.Snapshot("s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.EndSession("s1"), ErrNotFound)

	r, err := c.HandleEvent(context.Background(), "s1", workflow.Text("manual"))
	require.NoError(t, err)
	assert.NotEmpty(t, r.Welcome)
	assert.Equal(t, workflow.Idle(), r.State)
}

func TestController_SessionLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSessions = 1
	c := newTestController(t, cfg, nil)

	send(t, c, "a", "hi")
	_, err := c.HandleEvent(context.Background(), "b", workflow.Text("hi"))
	assert.ErrorIs(t, err, ErrLimit)

	send(t, c, "a", "hi again")
	require.NoError(t, c.EndSession("a"))
	send(t, c, "b", "hi")
	assert.Equal(t, []string{"b"}, c.IDs())
}

func TestController_SweepIdle(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultConfig()
	cfg.IdleTimeout = 10 * time.Minute
	cfg.SweepInterval = time.Hour
	c := newTestController(t, cfg, nil, WithClock(clock.Now))

	send(t, c, "old", "Onboard")
	clock.Advance(6 * time.Minute)
	send(t, c, "fresh", "Onboard")
	clock.Advance(6 * time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, []string{"fresh"}, c.IDs())

	_, err := c.Snapshot("old")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestController_SweepSkipsBusySessions(t *testing.T) {
	clock := newFakeClock()
	ex := mocks.NewMockExtractor().WithBlock()
	cfg := DefaultConfig()
	cfg.IdleTimeout = time.Minute
	cfg.SweepInterval = time.Hour
	c := newTestController(t, cfg, ex, WithClock(clock.Now))
	send(t, c, "s1", "Onboard")

	uploadCh := handleAsync(c, "s1", upload())
	waitStarted(t, ex)
	clock.Advance(time.Hour)

	assert.Equal(t, 0, c.Sweep())
	require.NoError(t, c.EndSession("s1"))
	<-uploadCh
}

func TestController_HistoryLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryLimit = 4
	c := newTestController(t, cfg, nil)

	for i := 0; i < 5; i++ {
		send(t, c, "s1", fmt.Sprintf("message %d", i))
	}
	snap, err := c.Snapshot("s1")
	require.NoError(t, err)
	require.Len(t, snap.History, 4)
	assert.Equal(t, "message 3", snap.History[0].Content)
}

func TestController_Observer(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestController(t, DefaultConfig(), nil, WithObserver(obs))

	send(t, c, "s1", "hi", "Onboard", "manual", "Jane Doe", "12")
	require.NoError(t, c.EndSession("s1"))

	assert.Equal(t, []string{
		"text:chat", "text:ok", "text:ok", "text:ok",
		"text:" + string(types.ErrValidationFailed),
	}, obs.Events())
	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []int{1, 0}, obs.active)
}

func TestController_WaitRespectsCallerContext(t *testing.T) {
	ex := mocks.NewMockExtractor().WithBlock()
	c := newTestController(t, DefaultConfig(), ex)
	send(t, c, "s1", "Onboard")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.HandleEvent(ctx, "s1", upload())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 调用方放弃等待不影响会话内的操作，取消后会话仍可用
	r := send(t, c, "s1", "cancel")
	assert.Equal(t, workflow.Idle(), r.State)
}

func TestController_Close(t *testing.T) {
	c := NewController(DefaultConfig(), factory(mocks.NewMockExtractor(), store.NewMemoryStore()))
	send(t, c, "s1", "hi")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())

	_, err := c.HandleEvent(context.Background(), "s1", workflow.Text("hi"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConfigFrom_Defaults(t *testing.T) {
	cfg := ConfigFrom(config.SessionConfig{BusyPolicy: "bogus", MailboxSize: 3})
	assert.Equal(t, PolicyQueue, cfg.BusyPolicy)
	assert.Equal(t, 3, cfg.MailboxSize)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 10000, cfg.MaxSessions)

	cfg = ConfigFrom(config.SessionConfig{BusyPolicy: "reject"})
	assert.Equal(t, PolicyReject, cfg.BusyPolicy)
}
