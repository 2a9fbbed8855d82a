package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/extraction"
	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/validation"
)

const instrumentationName = "github.com/BaSui01/onboardflow/workflow"

// Config 工作流配置
type Config struct {
	// 手动录入依次询问的字段；姓名、电话、薪资总会被加入
	RequiredFields []types.Field
	UniquenessKey  types.UniquenessKey
	OnboardCommand string
	// 提交（查重 + 写入）的时限，0 表示只受调用方 ctx 约束
	CommitTimeout time.Duration
	// 上传文件按行抽取的并发度
	RowConcurrency int
	// 单个上传文件最多抽取的行数
	MaxRows int
	// 保留的状态转换条数
	HistoryLimit int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		RequiredFields: append([]types.Field(nil), types.AllFields...),
		UniquenessKey:  types.KeyPhone,
		OnboardCommand: "onboard",
		CommitTimeout:  10 * time.Second,
		RowConcurrency: 4,
		MaxRows:        200,
		HistoryLimit:   100,
	}
}

// ConfigFrom 由全局配置构造工作流配置
func ConfigFrom(on config.OnboardingConfig, ex config.ExtractionConfig) Config {
	cfg := DefaultConfig()
	if len(on.RequiredFields) > 0 {
		cfg.RequiredFields = cfg.RequiredFields[:0]
		for _, s := range on.RequiredFields {
			if f, ok := types.ParseField(s); ok {
				cfg.RequiredFields = append(cfg.RequiredFields, f)
			}
		}
	}
	if k := types.UniquenessKey(strings.ToLower(on.UniquenessKey)); k.Valid() {
		cfg.UniquenessKey = k
	}
	if on.OnboardCommand != "" {
		cfg.OnboardCommand = on.OnboardCommand
	}
	if on.CommitTimeout > 0 {
		cfg.CommitTimeout = on.CommitTimeout
	}
	if ex.Concurrency > 0 {
		cfg.RowConcurrency = ex.Concurrency
	}
	if ex.MaxRows > 0 {
		cfg.MaxRows = ex.MaxRows
	}
	return cfg
}

// requiredFields 按采集顺序返回实际必填字段
func requiredFields(configured []types.Field) []types.Field {
	want := map[types.Field]bool{
		types.FieldName:   true,
		types.FieldPhone:  true,
		types.FieldSalary: true,
	}
	for _, f := range configured {
		want[f] = true
	}
	out := make([]types.Field, 0, len(types.AllFields))
	for _, f := range types.AllFields {
		if want[f] {
			out = append(out, f)
		}
	}
	return out
}

// Observer 接收状态转换与提交通知
type Observer interface {
	OnTransition(ctx context.Context, sessionID string, t Transition)
	OnCommit(ctx context.Context, sessionID string, rec types.EmployeeRecord)
}

// Observers 把通知广播给多个观察者
type Observers []Observer

func (os Observers) OnTransition(ctx context.Context, sessionID string, t Transition) {
	for _, o := range os {
		if o != nil {
			o.OnTransition(ctx, sessionID, t)
		}
	}
}

func (os Observers) OnCommit(ctx context.Context, sessionID string, rec types.EmployeeRecord) {
	for _, o := range os {
		if o != nil {
			o.OnCommit(ctx, sessionID, rec)
		}
	}
}

// Reply 处理一个事件后的结果
type Reply struct {
	State     State                 `json:"state"`
	Message   string                `json:"message"`
	Draft     *DraftView            `json:"draft,omitempty"`
	Options   []string              `json:"options,omitempty"`
	Pending   int                   `json:"pending,omitempty"`
	Committed *types.EmployeeRecord `json:"committed,omitempty"`
	// Passthrough 为 true 时输入不属于入职流程，交给通用对话处理
	Passthrough bool  `json:"passthrough,omitempty"`
	Err         error `json:"-"`
}

// Workflow 单个会话的入职状态机。
// 不是并发安全的，由会话控制器保证同一时刻只有一个事件在处理。
type Workflow struct {
	id        string
	cfg       Config
	required  []types.Field
	validator *validation.Validator
	extractor extraction.Extractor
	store     store.RecordStore
	observer  Observer
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time

	state   State
	draft   *Draft
	backlog []pendingRow
	history *TransitionHistory
}

// Option 工作流选项
type Option func(*Workflow)

func WithObserver(o Observer) Option {
	return func(w *Workflow) { w.observer = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithTracer(t trace.Tracer) Option {
	return func(w *Workflow) { w.tracer = t }
}

// New 创建处于 Idle 的工作流。extractor 可以为 nil，此时上传一律失败。
func New(id string, cfg Config, v *validation.Validator, ex extraction.Extractor, st store.RecordStore, opts ...Option) *Workflow {
	def := DefaultConfig()
	if !cfg.UniquenessKey.Valid() {
		cfg.UniquenessKey = def.UniquenessKey
	}
	if cfg.OnboardCommand == "" {
		cfg.OnboardCommand = def.OnboardCommand
	}
	if cfg.RowConcurrency <= 0 {
		cfg.RowConcurrency = def.RowConcurrency
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = def.MaxRows
	}
	if v == nil {
		v = validation.New(validation.DefaultConfig())
	}

	w := &Workflow{
		id:        id,
		cfg:       cfg,
		required:  requiredFields(cfg.RequiredFields),
		validator: v,
		extractor: ex,
		store:     st,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(instrumentationName),
		now:       time.Now,
		state:     Idle(),
		history:   NewTransitionHistory(cfg.HistoryLimit),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.String("component", "workflow"), zap.String("session_id", id))
	return w
}

func (w *Workflow) ID() string                  { return w.id }
func (w *Workflow) State() State                { return w.state }
func (w *Workflow) Required() []types.Field     { return append([]types.Field(nil), w.required...) }
func (w *Workflow) History() *TransitionHistory { return w.history }
func (w *Workflow) Pending() int                { return len(w.backlog) }

// Draft 返回当前草稿快照，没有草稿时为 nil
func (w *Workflow) Draft() *DraftView { return w.draft.View(w.required) }

// Welcome 新会话的欢迎语
func (w *Workflow) Welcome() string {
	return fmt.Sprintf(msgWelcome, w.displayCommand())
}

func (w *Workflow) displayCommand() string {
	c := w.cfg.OnboardCommand
	if c == "" {
		return c
	}
	return strings.ToUpper(c[:1]) + c[1:]
}

// Handle 处理一个事件。所有 (状态, 事件) 组合都有定义，不会返回非法状态。
func (w *Workflow) Handle(ctx context.Context, ev Event) Reply {
	if err := ev.Validate(); err != nil {
		return w.unexpected(err)
	}
	if ev.IsCancel() {
		return w.cancel(ev)
	}

	switch w.state.Kind {
	case StateIdle, StateCommitted:
		return w.handleIdle(ev)
	case StateAwaitingInputMethod:
		return w.handleInputMethod(ctx, ev)
	case StateAwaitingExtraction:
		return w.handleAwaitingExtraction(ctx, ev)
	case StateCollectingManualField:
		return w.handleCollecting(ev)
	case StateReviewingDraft, StateFailed:
		if w.state.Is(StateFailed) && ev.Kind == EventText && w.isOnboardCommand(ev.Value) {
			return w.start(ev)
		}
		return w.handleReview(ctx, ev)
	}
	return w.unexpected(nil)
}

func (w *Workflow) handleIdle(ev Event) Reply {
	if ev.Kind != EventText {
		return w.unexpected(nil)
	}
	if w.isOnboardCommand(ev.Value) {
		return w.start(ev)
	}
	return w.passthrough()
}

func (w *Workflow) handleInputMethod(ctx context.Context, ev Event) Reply {
	switch ev.Kind {
	case EventFileUpload:
		return w.extract(ctx, ev)
	case EventText:
		switch methodChoice(ev.Value) {
		case sourceUpload:
			w.setState(AwaitingExtraction(), ev.Kind, nil)
			return w.reply(msgAwaitUpload)
		case sourceManual:
			return w.startManual(ev)
		}
		return w.passthrough()
	}
	return w.unexpected(nil)
}

func (w *Workflow) handleAwaitingExtraction(ctx context.Context, ev Event) Reply {
	switch ev.Kind {
	case EventFileUpload:
		return w.extract(ctx, ev)
	case EventText:
		switch methodChoice(ev.Value) {
		case sourceManual:
			return w.startManual(ev)
		case sourceUpload:
			return w.reply(msgAwaitUpload)
		}
		if strings.TrimSpace(ev.Value) == "" {
			return w.reply(msgAwaitUpload)
		}
		return w.extract(ctx, ev)
	}
	return w.unexpected(nil)
}

func (w *Workflow) handleCollecting(ev Event) Reply {
	field := w.state.Field
	switch ev.Kind {
	case EventText:
	case EventFieldEdit:
		field = ev.Field
	default:
		return w.unexpected(nil)
	}

	if err := w.validator.Apply(&w.draft.Record, field, ev.Value); err != nil {
		w.draft.setError(field, err)
		r := w.reply(fieldFailed(field, err))
		if field != w.state.Field {
			r.Message += " " + fieldPrompt(w.state.Field)
		}
		r.Err = err
		return r
	}
	w.draft.setError(field, nil)
	return w.advance(ev, "Great. ")
}

// advance 询问下一个缺失的必填字段，全部齐全时进入审核
func (w *Workflow) advance(ev Event, prefix string) Reply {
	missing := w.draft.Record.Missing(w.required)
	if len(missing) > 0 {
		w.setState(CollectingManualField(missing[0]), ev.Kind, nil)
		return w.reply(prefix + fieldPrompt(missing[0]))
	}
	w.setState(ReviewingDraft(), ev.Kind, nil)
	return w.reply("All details for this employee have been collected. Please review:\n" +
		renderDraft(w.draft, w.required) + "\n" + msgReviewFooter)
}

func (w *Workflow) handleReview(ctx context.Context, ev Event) Reply {
	switch ev.Kind {
	case EventConfirm:
		return w.commit(ctx, ev)
	case EventFieldEdit:
		return w.edit(ev, ev.Field, ev.Value)
	case EventFileUpload:
		return w.unexpected(nil)
	}

	switch cmd := normalize(ev.Value); cmd {
	case "save", "yes", "confirm", "proceed", "proceed to save", "retry":
		return w.commit(ctx, ev)
	case "edit", "modify", "modify data":
		return w.reply(msgEditUsage)
	case "manual", "add another", "add another manually":
		return w.startManual(ev)
	case "skip", "next":
		if len(w.backlog) > 0 {
			w.draft = nil
			return w.nextFromBacklog(ev, "Skipped. ")
		}
	}
	if f, v, ok := parseEdit(ev.Value); ok {
		return w.edit(ev, f, v)
	}
	return w.unexpected(nil)
}

// edit 修改草稿中的一个字段，失败时草稿不变并记录字段错误
func (w *Workflow) edit(ev Event, f types.Field, raw string) Reply {
	err := w.validator.Apply(&w.draft.Record, f, raw)
	w.draft.setError(f, err)
	w.setState(ReviewingDraft(), ev.Kind, nil)

	if err != nil {
		r := w.reply(fieldFailed(f, err) + " The draft was not changed.\n" + renderDraft(w.draft, w.required))
		r.Err = err
		return r
	}
	return w.reply(fmt.Sprintf("Updated %s.\n", strings.ToLower(f.Label())) +
		renderDraft(w.draft, w.required) + "\n" + msgReviewFooter)
}

// start 开始新一轮入职，丢弃之前的草稿与待审核行
func (w *Workflow) start(ev Event) Reply {
	w.draft = newDraft("")
	w.backlog = nil
	w.setState(AwaitingInputMethod(), ev.Kind, nil)
	return w.reply(msgChooseMethod)
}

func (w *Workflow) startManual(ev Event) Reply {
	w.draft = newDraft(sourceManual)
	return w.advance(ev, msgManualStart+" ")
}

func (w *Workflow) cancel(ev Event) Reply {
	hadDraft := w.draft != nil || len(w.backlog) > 0
	w.draft = nil
	w.backlog = nil
	w.setState(Idle(), ev.Kind, nil)
	if !hadDraft {
		return w.reply(msgNothingToStop)
	}
	return w.reply(msgCancelled)
}

// extract 调用抽取器。失败时回到 AwaitingInputMethod，草稿保持调用前的样子；
// 被取消时回到事件到达前的状态。
func (w *Workflow) extract(ctx context.Context, ev Event) Reply {
	prev := w.state
	w.setState(AwaitingExtraction(), ev.Kind, nil)

	results, skipped, err := w.runExtraction(ctx, ev)
	if err == nil && errors.Is(ctx.Err(), context.Canceled) {
		err = extraction.AsError(ctx.Err())
	}
	if err != nil {
		if extraction.AsError(err).Kind == extraction.KindCancelled {
			return w.cancelled(prev, ev, err)
		}
		return w.extractionFailed(ev, err)
	}

	var (
		rows     []pendingRow
		failed   []int
		firstErr error
	)
	for _, r := range results {
		if r.Err == nil && r.Candidate.Empty() {
			r.Err = &extraction.Error{Kind: extraction.KindUnparsableResponse, Message: "no employee fields were found"}
		}
		if r.Err != nil {
			if extraction.AsError(r.Err).Kind == extraction.KindCancelled {
				return w.cancelled(prev, ev, r.Err)
			}
			w.logger.Info("row extraction failed", zap.Int("row", r.Row.Index), zap.Error(r.Err))
			failed = append(failed, r.Row.Index)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		rec, errs := w.validator.Candidate(r.Candidate)
		rows = append(rows, pendingRow{row: r.Row.Index, record: rec, errs: errs})
	}
	if len(rows) == 0 {
		return w.extractionFailed(ev, firstErr)
	}

	first := rows[0].draft()
	if ev.Kind == EventText {
		first.Source = sourcePaste
		first.Row = 0
	}
	w.draft = first
	w.backlog = rows[1:]
	w.setState(ReviewingDraft(), ev.Kind, nil)

	var b strings.Builder
	b.WriteString("Here is the extracted data. Please review it carefully.\n")
	b.WriteString(renderDraft(w.draft, w.required))
	if len(w.backlog) > 0 {
		fmt.Fprintf(&b, "\n%d more record(s) are queued for review after this one.", len(w.backlog))
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\nCould not extract row(s) %s.", joinInts(failed))
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "\n"+msgRowsSkipped, w.cfg.MaxRows, skipped)
	}
	b.WriteString("\n" + msgReviewFooter)
	return w.reply(b.String())
}

// runExtraction 返回逐行结果与超出 MaxRows 未处理的行数
func (w *Workflow) runExtraction(ctx context.Context, ev Event) ([]extraction.RowResult, int, error) {
	if w.extractor == nil {
		return nil, 0, &extraction.Error{Kind: extraction.KindUnavailable, Message: "no extractor is configured"}
	}
	if ev.Kind == EventFileUpload {
		results, skipped, err := extraction.ExtractFile(ctx, w.extractor, ev.FileName, ev.Data, w.cfg.RowConcurrency, w.cfg.MaxRows)
		if skipped > 0 {
			w.logger.Warn("upload truncated", zap.Int("max_rows", w.cfg.MaxRows), zap.Int("skipped", skipped))
		}
		return results, skipped, err
	}
	rec, err := w.extractor.Extract(ctx, ev.Value)
	return []extraction.RowResult{{Row: extraction.Row{Index: 1, Text: ev.Value}, Candidate: rec, Err: err}}, 0, nil
}

func (w *Workflow) extractionFailed(ev Event, err error) Reply {
	xe := extraction.AsError(err)
	w.logger.Warn("extraction failed", zap.String("kind", xe.Kind.String()), zap.Error(err))
	w.setState(AwaitingInputMethod(), ev.Kind, xe)
	r := w.reply(extractionFailed(xe))
	r.Err = xe
	return r
}

// commit 查重后写入存储
func (w *Workflow) commit(ctx context.Context, ev Event) Reply {
	prev := w.state

	if missing := w.draft.Record.Missing(w.required); len(missing) > 0 {
		w.setState(ReviewingDraft(), ev.Kind, nil)
		r := w.reply(incompleteDraft(missing))
		r.Err = &Error{Kind: KindIncompleteDraft, State: prev, Missing: missing}
		return r
	}
	rec, _ := w.draft.Record.Record(w.now())
	key := w.cfg.UniquenessKey.Of(rec)

	ctx, span := w.tracer.Start(ctx, "workflow.commit", trace.WithAttributes(
		attribute.String("session.id", w.id),
		attribute.String("onboarding.uniqueness_key", string(w.cfg.UniquenessKey)),
	))
	defer span.End()

	err := w.appendRecord(ctx, key, rec)
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("commit.outcome", "committed"))
	case errors.Is(ctx.Err(), context.Canceled):
		span.SetStatus(codes.Error, "cancelled")
		return w.cancelled(prev, ev, err)
	case store.IsDuplicate(err):
		span.SetAttributes(attribute.String("commit.outcome", "duplicate"))
		w.setState(ReviewingDraft(), ev.Kind, err)
		r := w.reply(duplicateRecord(w.cfg.UniquenessKey) + "\n" + renderDraft(w.draft, w.required))
		r.Err = err
		return r
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence unavailable")
		w.logger.Error("commit failed", zap.Error(err))
		we := &Error{Kind: KindPersistenceUnavailable, State: prev, Cause: err}
		w.setState(Failed("persistence unavailable"), ev.Kind, we)
		r := w.reply(msgPersistFailed)
		r.Err = we
		return r
	}

	w.logger.Info("employee committed", zap.String("name", rec.Name))
	if w.observer != nil {
		w.observer.OnCommit(ctx, w.id, rec)
	}
	w.draft = nil
	w.setState(Committed(), ev.Kind, nil)

	if len(w.backlog) > 0 {
		r := w.nextFromBacklog(ev, committed(rec)+" ")
		r.Committed = &rec
		return r
	}
	r := w.reply(committed(rec) + " " + fmt.Sprintf(msgOnboardAgain, w.displayCommand()))
	r.Committed = &rec
	return r
}

func (w *Workflow) appendRecord(ctx context.Context, key string, rec types.EmployeeRecord) error {
	if w.store == nil {
		return &store.Error{Kind: store.KindUnavailable, Op: "append", Cause: errors.New("no record store is configured")}
	}
	if w.cfg.CommitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.CommitTimeout)
		defer cancel()
	}

	exists, err := w.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return &store.Error{Kind: store.KindDuplicateKey, Op: "exists", Key: key}
	}
	return w.store.Append(ctx, key, rec)
}

// nextFromBacklog 把下一条待审核行载入草稿
func (w *Workflow) nextFromBacklog(ev Event, prefix string) Reply {
	next := w.backlog[0]
	w.backlog = w.backlog[1:]
	w.draft = next.draft()
	w.setState(ReviewingDraft(), ev.Kind, nil)
	return w.reply(fmt.Sprintf("%sNext record (row %d) is ready for review:\n", prefix, next.row) +
		renderDraft(w.draft, w.required) + "\n" + msgReviewFooter)
}

// cancelled 阻塞操作被取消：回到事件到达前的状态，草稿不变
func (w *Workflow) cancelled(prev State, ev Event, cause error) Reply {
	w.logger.Info("operation cancelled", zap.String("state", prev.String()))
	we := &Error{Kind: KindCancelled, State: prev, Cause: cause}
	w.setState(prev, ev.Kind, we)
	r := w.reply(msgOpCancelled + " " + w.prompt())
	r.Err = we
	return r
}

func (w *Workflow) unexpected(cause error) Reply {
	r := w.reply(w.prompt())
	r.Err = &Error{Kind: KindUnexpectedInput, State: w.state, Cause: cause}
	return r
}

func (w *Workflow) passthrough() Reply {
	r := w.reply("")
	r.Passthrough = true
	return r
}

// prompt 当前状态下提示用户的话
func (w *Workflow) prompt() string {
	if w.state.Is(StateIdle) || w.state.Is(StateCommitted) {
		return fmt.Sprintf("Type '%s' to start onboarding.", w.displayCommand())
	}
	return unexpectedInput(w.state)
}

func (w *Workflow) reply(msg string) Reply {
	return Reply{
		State:   w.state,
		Message: msg,
		Draft:   w.Draft(),
		Options: w.options(),
		Pending: len(w.backlog),
	}
}

func (w *Workflow) options() []string {
	switch w.state.Kind {
	case StateIdle, StateCommitted:
		return []string{w.cfg.OnboardCommand}
	case StateAwaitingInputMethod:
		return []string{"upload", "manual"}
	case StateAwaitingExtraction:
		return []string{"manual", "cancel"}
	case StateCollectingManualField:
		return []string{"cancel"}
	case StateReviewingDraft:
		opts := []string{"save", "edit", "manual", "cancel"}
		if len(w.backlog) > 0 {
			opts = append(opts, "skip")
		}
		return opts
	case StateFailed:
		return []string{"save", "edit", "cancel"}
	}
	return nil
}

// setState 执行状态转换并通知观察者
func (w *Workflow) setState(to State, ev EventKind, cause error) {
	from := w.state
	if from == to {
		return
	}
	if !CanTransition(from.Kind, to.Kind) {
		w.logger.Error("refusing transition", zap.Error(ErrInvalidTransition{From: from, To: to}))
		return
	}
	w.state = to

	t := Transition{From: from, To: to, Event: ev, At: w.now()}
	if cause != nil {
		t.Error = cause.Error()
	}
	w.history.Record(t)
	w.logger.Debug("state transition", zap.Stringer("from", from), zap.Stringer("to", to))
	if w.observer != nil {
		w.observer.OnTransition(context.Background(), w.id, t)
	}
}

// isOnboardCommand 大小写不敏感的精确匹配，前后空白不忽略
func (w *Workflow) isOnboardCommand(s string) bool {
	return strings.EqualFold(s, w.cfg.OnboardCommand)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func isCancelWord(s string) bool {
	switch normalize(s) {
	case "cancel", "reset":
		return true
	}
	return false
}

// methodChoice 识别输入方式选择
func methodChoice(s string) string {
	switch normalize(s) {
	case "upload", "file", "upload file", "file upload", "upload excel file", "spreadsheet":
		return sourceUpload
	case "manual", "manually", "manual entry", "enter manually":
		return sourceManual
	}
	return ""
}

// parseEdit 解析 "edit <field> <value>" 与 "<field>: <value>" 两种写法
func parseEdit(s string) (types.Field, string, bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, verb := range []string{"edit ", "change ", "set ", "update "} {
		if strings.HasPrefix(lower, verb) {
			return parseFieldValue(strings.TrimSpace(s[len(verb):]), true)
		}
	}
	return parseFieldValue(s, false)
}

func parseFieldValue(s string, allowSpace bool) (types.Field, string, bool) {
	if i := strings.Index(s, ":"); i > 0 {
		if f, ok := types.ParseField(s[:i]); ok {
			v := strings.TrimSpace(s[i+1:])
			return f, v, v != ""
		}
	}
	if !allowSpace {
		return "", "", false
	}

	words := strings.Fields(s)
	// 字段名最多两个词，如 "phone number"、"job title"
	for n := min(2, len(words)-1); n >= 1; n-- {
		f, ok := types.ParseField(strings.Join(words[:n], " "))
		if !ok {
			continue
		}
		rest := words[n:]
		if len(rest) > 1 && strings.EqualFold(rest[0], "to") {
			rest = rest[1:]
		}
		return f, strings.Join(rest, " "), true
	}
	return "", "", false
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
