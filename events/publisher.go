package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

// DefaultPrefix 默认主题前缀
const DefaultPrefix = "onboarding"

// Publisher 领域事件发布器
type Publisher interface {
	workflow.Observer
	Close() error
}

// CommittedEvent 记录提交事件
type CommittedEvent struct {
	SessionID string               `json:"session_id"`
	Record    types.EmployeeRecord `json:"record"`
	At        time.Time            `json:"at"`
}

// TransitionEvent 状态转换事件
type TransitionEvent struct {
	SessionID string             `json:"session_id"`
	From      workflow.State     `json:"from"`
	To        workflow.State     `json:"to"`
	Event     workflow.EventKind `json:"event"`
	Error     string             `json:"error,omitempty"`
	At        time.Time          `json:"at"`
}

// CommittedSubject 提交事件主题
func CommittedSubject(prefix string) string {
	return orDefault(prefix) + ".record.committed"
}

// TransitionSubject 会话状态转换主题
func TransitionSubject(prefix, sessionID string) string {
	return fmt.Sprintf("%s.session.%s.transition", orDefault(prefix), token(sessionID))
}

func orDefault(prefix string) string {
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}

// token 把会话 id 转成合法的单级主题
func token(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, id)
}

// NATSPublisher 通过 NATS 发布事件
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	owned  bool
	logger *zap.Logger
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher 使用已有连接，Close 不会关闭该连接
func NewNATSPublisher(nc *nats.Conn, prefix string, logger *zap.Logger) *NATSPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSPublisher{
		nc:     nc,
		prefix: orDefault(prefix),
		logger: logger.With(zap.String("component", "events")),
	}
}

// Connect 按配置建立连接
func Connect(cfg config.NATSConfig, logger *zap.Logger) (*NATSPublisher, error) {
	name := cfg.ClientName
	if name == "" {
		name = "onboardflow"
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	p := NewNATSPublisher(nc, cfg.SubjectPrefix, logger)
	p.owned = true
	p.logger.Info("connected to NATS", zap.String("url", cfg.URL))
	return p, nil
}

// OnCommit 实现 workflow.Observer
func (p *NATSPublisher) OnCommit(_ context.Context, sessionID string, rec types.EmployeeRecord) {
	p.publish(CommittedSubject(p.prefix), CommittedEvent{
		SessionID: sessionID,
		Record:    rec,
		At:        time.Now(),
	})
}

// OnTransition 实现 workflow.Observer
func (p *NATSPublisher) OnTransition(_ context.Context, sessionID string, t workflow.Transition) {
	p.publish(TransitionSubject(p.prefix, sessionID), TransitionEvent{
		SessionID: sessionID,
		From:      t.From,
		To:        t.To,
		Event:     t.Event,
		Error:     t.Error,
		At:        t.At,
	})
}

func (p *NATSPublisher) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn("publish event failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Flush 等待已发布的事件送达服务端
func (p *NATSPublisher) Flush(ctx context.Context) error {
	return p.nc.FlushWithContext(ctx)
}

// Close 刷新缓冲；连接由 Connect 创建时一并关闭
func (p *NATSPublisher) Close() error {
	if !p.owned {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}

// LogPublisher 把事件写入日志
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher 创建日志发布器
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger.With(zap.String("component", "events"))}
}

func (p *LogPublisher) OnCommit(_ context.Context, sessionID string, rec types.EmployeeRecord) {
	p.logger.Info("record committed",
		zap.String("session_id", sessionID),
		zap.String("name", rec.Name),
		zap.String("phone", rec.Phone))
}

func (p *LogPublisher) OnTransition(_ context.Context, sessionID string, t workflow.Transition) {
	p.logger.Debug("state transition",
		zap.String("session_id", sessionID),
		zap.Stringer("from", t.From),
		zap.Stringer("to", t.To),
		zap.String("event", string(t.Event)))
}

func (p *LogPublisher) Close() error { return nil }

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) OnCommit(context.Context, string, types.EmployeeRecord)  {}
func (Nop) OnTransition(context.Context, string, workflow.Transition) {}
func (Nop) Close() error                                              { return nil }

// New 按配置创建发布器：启用 NATS 时连接 NATS，否则写日志
func New(cfg config.NATSConfig, logger *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NewLogPublisher(logger), nil
	}
	return Connect(cfg, logger)
}
