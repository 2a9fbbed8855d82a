package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/llm"
	"github.com/BaSui01/onboardflow/llm/retry"
	"github.com/BaSui01/onboardflow/types"
)

const instrumentationName = "github.com/BaSui01/onboardflow/extraction"

// Config 抽取器配置
type Config struct {
	Timeout       time.Duration // 单次抽取总时限（含重试）
	MaxInputChars int           // 超出部分截断
	Model         string
	Temperature   float32
	MaxRetries    int
	RetryDelay    time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Second,
		MaxInputChars: 20000,
		MaxRetries:    2,
		RetryDelay:    500 * time.Millisecond,
	}
}

// ConfigFrom 由全局配置构造抽取配置，未设置的项保留默认值
func ConfigFrom(c config.ExtractionConfig, model string) Config {
	cfg := DefaultConfig()
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.MaxInputChars > 0 {
		cfg.MaxInputChars = c.MaxInputChars
	}
	if c.MaxRetries >= 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	cfg.Temperature = float32(c.Temperature)
	cfg.Model = model
	return cfg
}

// LLMExtractor 通过 llm.Provider 完成抽取
type LLMExtractor struct {
	provider llm.Provider
	cfg      Config
	retryer  *retry.Backoff
	observer Observer
	tracer   trace.Tracer
	logger   *zap.Logger
}

var _ Extractor = (*LLMExtractor)(nil)

// NewLLMExtractor 创建抽取器。provider 为 nil 时所有调用返回 Unavailable。
func NewLLMExtractor(provider llm.Provider, cfg Config, logger *zap.Logger) *LLMExtractor {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = def.MaxInputChars
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "extractor"))

	return &LLMExtractor{
		provider: provider,
		cfg:      cfg,
		retryer: retry.NewBackoff(retry.Policy{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     cfg.Timeout,
			Multiplier:   2.0,
			Jitter:       true,
			RetryIf:      llm.IsRetryable,
		}, logger),
		tracer: otel.Tracer(instrumentationName),
		logger: logger,
	}
}

// WithObserver 设置观测回调
func (e *LLMExtractor) WithObserver(o Observer) *LLMExtractor {
	e.observer = o
	return e
}

// Extract 实现 Extractor
func (e *LLMExtractor) Extract(ctx context.Context, text string) (rec types.CandidateRecord, err error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "extraction.extract",
		trace.WithAttributes(attribute.Int("extraction.input_chars", utf8.RuneCountInString(text))))
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extractor panic recovered", zap.Any("panic", r), zap.Stack("stack"))
			rec, err = types.CandidateRecord{}, &Error{Kind: KindUnavailable, Message: "extraction failed unexpectedly", Cause: fmt.Errorf("panic: %v", r)}
		}
		outcome := "success"
		if err != nil {
			xe := AsError(err)
			err = xe
			outcome = strings.ToLower(xe.Kind.String())
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("extraction.outcome", outcome))
		span.End()
		if e.observer != nil {
			e.observer.ObserveExtraction(outcome, time.Since(start))
		}
	}()

	if strings.TrimSpace(text) == "" {
		return types.CandidateRecord{}, &Error{Kind: KindInvalidInput, Message: "nothing to extract from"}
	}
	if e.provider == nil {
		return types.CandidateRecord{}, &Error{Kind: KindUnavailable, Message: "no language model is configured"}
	}
	if err := ctx.Err(); err != nil {
		return types.CandidateRecord{}, classify(ctx, err)
	}

	input := truncateRunes(text, e.cfg.MaxInputChars)
	if len(input) < len(text) {
		e.logger.Debug("extraction input truncated", zap.Int("max_chars", e.cfg.MaxInputChars))
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req := &llm.ChatRequest{
		Model: e.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: input},
		},
		Temperature: e.cfg.Temperature,
		JSONMode:    true,
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		req.TraceID = sc.TraceID().String()
	}

	resp, err := retry.Do(callCtx, e.retryer, func() (*llm.ChatResponse, error) {
		return e.provider.Completion(callCtx, req)
	})
	if err != nil {
		e.logger.Warn("extraction call failed", zap.Error(err))
		return types.CandidateRecord{}, classify(ctx, err)
	}

	content, ok := resp.FirstContent()
	if !ok || strings.TrimSpace(content) == "" {
		return types.CandidateRecord{}, &Error{Kind: KindUnparsableResponse, Message: "model returned an empty response"}
	}
	return ParseResponse(content)
}

// classify 把调用错误归类：父 ctx 取消优先，其次是超时，其余视为不可用
func classify(parent context.Context, err error) *Error {
	if errors.Is(parent.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindCancelled, Message: "extraction was cancelled", Cause: err}
	}
	var le *llm.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &le) && le.Code == llm.ErrUpstreamTimeout) {
		return &Error{Kind: KindTimeout, Message: "extraction timed out", Cause: err}
	}
	return &Error{Kind: KindUnavailable, Message: "extraction service is unavailable", Cause: err}
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
