package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/api/handlers"
	"github.com/BaSui01/onboardflow/chat"
	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/events"
	"github.com/BaSui01/onboardflow/extraction"
	"github.com/BaSui01/onboardflow/internal/cache"
	"github.com/BaSui01/onboardflow/internal/metrics"
	"github.com/BaSui01/onboardflow/internal/telemetry"
	"github.com/BaSui01/onboardflow/llm"
	llmfactory "github.com/BaSui01/onboardflow/llm/factory"
	"github.com/BaSui01/onboardflow/session"
	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/validation"
	"github.com/BaSui01/onboardflow/workflow"
)

const metricsNamespace = "onboardflow"

// App 组装好的运行时组件，serve 与 chat 共用
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	collector *metrics.Collector

	redis     redis.UniversalClient
	store     store.RecordStore
	provider  llm.Provider
	extractor extraction.Extractor
	publisher events.Publisher
	sessions  *session.Controller

	rateLimiter *RateLimiter
}

// buildApp 按配置创建全部组件。reg 为空时使用 Prometheus 默认注册表
func buildApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *zap.Logger) (*App, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	app := &App{
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollectorWith(reg, metricsNamespace, logger),

		rateLimiter: NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger),
	}

	if err := app.init(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.cfg

	// 记录存储与抽取缓存共用一条 Redis 连接
	if strings.EqualFold(cfg.Store.Backend, string(store.BackendRedis)) || cfg.Extraction.CacheEnabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
	}

	st, err := store.New(ctx, cfg, store.Deps{Redis: a.redis, Observer: a.collector}, a.logger)
	if err != nil {
		return err
	}
	a.store = st

	provider, err := llmfactory.NewProviderFromConfig(cfg.LLM, a.logger)
	switch {
	case errors.Is(err, llmfactory.ErrDisabled):
		a.logger.Warn("llm provider disabled, extraction unavailable and chat uses canned replies",
			zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	case err != nil:
		return fmt.Errorf("create llm provider: %w", err)
	default:
		a.provider = provider
	}
	a.extractor = a.newExtractor()

	pub, err := events.New(cfg.NATS, a.logger)
	if err != nil {
		return fmt.Errorf("connect event publisher: %w", err)
	}
	a.publisher = pub

	otelObserver, err := telemetry.NewWorkflowObserver(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("create workflow instruments: %w", err)
	}

	validator := validation.New(validation.Config{
		PhoneMinDigits: cfg.Onboarding.PhoneMinDigits,
		PhoneMaxDigits: cfg.Onboarding.PhoneMaxDigits,
		MaxTextLength:  cfg.Onboarding.MaxTextLength,
	})
	wfCfg := workflow.ConfigFrom(cfg.Onboarding, cfg.Extraction)
	wfCfg.HistoryLimit = cfg.Session.HistoryLimit
	observers := workflow.Observers{a.collector, a.publisher, otelObserver}
	wfLogger := a.logger.Named("workflow")

	factory := func(id string) *workflow.Workflow {
		return workflow.New(id, wfCfg, validator, a.extractor, a.store,
			workflow.WithObserver(observers),
			workflow.WithLogger(wfLogger),
		)
	}

	var model string
	if a.provider != nil {
		model = cfg.LLM.Model
	}
	responder := chat.New(cfg.Chat, a.provider, model, wfCfg.OnboardCommand, a.logger)

	a.sessions = session.NewController(session.ConfigFrom(cfg.Session), factory,
		session.WithResponder(responder),
		session.WithObserver(a.collector),
		session.WithLogger(a.logger),
	)
	return nil
}

// newExtractor LLM 抽取器，按配置套一层 Redis 缓存
func (a *App) newExtractor() extraction.Extractor {
	llmEx := extraction.NewLLMExtractor(a.provider,
		extraction.ConfigFrom(a.cfg.Extraction, a.cfg.LLM.Model), a.logger).
		WithObserver(a.collector)
	if !a.cfg.Extraction.CacheEnabled || a.redis == nil {
		return llmEx
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.KeyPrefix = a.cfg.Redis.KeyPrefix + "extract:"
	if a.cfg.Extraction.CacheTTL > 0 {
		cacheCfg.DefaultTTL = a.cfg.Extraction.CacheTTL
	}
	mgr := cache.NewManagerFromClient(a.redis, cacheCfg, a.logger)
	return extraction.NewCachedExtractor(llmEx, mgr, cacheCfg.DefaultTTL, a.logger).
		WithObserver(a.collector)
}

// healthChecks 就绪检查：记录存储必须可用；启用 NATS 时连接也必须可用。
// 模型服务不参与就绪判断，不可用时只影响抽取。
func (a *App) healthChecks() []handlers.HealthCheck {
	checks := []handlers.HealthCheck{handlers.NewPingCheck("store", a.store.Ping)}
	if f, ok := a.publisher.(interface{ Flush(context.Context) error }); ok {
		checks = append(checks, handlers.NewPingCheck("nats", f.Flush))
	}
	return checks
}

// Close 按依赖的反方向释放资源
func (a *App) Close() error {
	var errs []error
	if a.sessions != nil {
		errs = append(errs, a.sessions.Close())
	}
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
