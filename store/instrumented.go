package store

import (
	"context"
	"time"

	"github.com/BaSui01/onboardflow/types"
	"go.uber.org/zap"
)

// Observer 接收存储操作的观测数据
type Observer interface {
	ObserveStoreOp(backend, op, status string, duration time.Duration)
}

// Instrumented 为任意后端加上单次操作超时、指标与日志
type Instrumented struct {
	next     RecordStore
	backend  Backend
	timeout  time.Duration
	observer Observer
	logger   *zap.Logger
}

// InstrumentOption 配置选项
type InstrumentOption func(*Instrumented)

// WithOpTimeout 设置单次操作超时
func WithOpTimeout(d time.Duration) InstrumentOption {
	return func(i *Instrumented) { i.timeout = d }
}

// WithStoreObserver 设置指标观察者
func WithStoreObserver(o Observer) InstrumentOption {
	return func(i *Instrumented) { i.observer = o }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) InstrumentOption {
	return func(i *Instrumented) {
		if l != nil {
			i.logger = l
		}
	}
}

// Instrument 包装存储
func Instrument(next RecordStore, backend Backend, opts ...InstrumentOption) *Instrumented {
	i := &Instrumented{next: next, backend: backend, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = i.logger.With(zap.String("component", "record_store"), zap.String("backend", string(backend)))
	return i
}

// Unwrap 返回被包装的存储
func (i *Instrumented) Unwrap() RecordStore { return i.next }

func (i *Instrumented) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, i.timeout)
}

func (i *Instrumented) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case err == nil:
	case IsDuplicate(err):
		status = "duplicate"
	default:
		status = "error"
		i.logger.Warn("store operation failed", zap.String("op", op), zap.Error(err))
	}
	if i.observer != nil {
		i.observer.ObserveStoreOp(string(i.backend), op, status, time.Since(start))
	}
}

func (i *Instrumented) Exists(ctx context.Context, key string) (ok bool, err error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()
	defer func(start time.Time) { i.observe("exists", start, err) }(time.Now())
	return i.next.Exists(ctx, key)
}

func (i *Instrumented) Append(ctx context.Context, key string, rec types.EmployeeRecord) (err error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()
	defer func(start time.Time) { i.observe("append", start, err) }(time.Now())
	return i.next.Append(ctx, key, rec)
}

func (i *Instrumented) List(ctx context.Context, limit int) (recs []types.EmployeeRecord, err error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()
	defer func(start time.Time) { i.observe("list", start, err) }(time.Now())
	return i.next.List(ctx, limit)
}

func (i *Instrumented) Ping(ctx context.Context) (err error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()
	defer func(start time.Time) { i.observe("ping", start, err) }(time.Now())
	return i.next.Ping(ctx)
}

func (i *Instrumented) Close() error { return i.next.Close() }
