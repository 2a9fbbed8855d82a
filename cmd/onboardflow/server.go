package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/onboardflow/api/handlers"
	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/internal/server"
	"github.com/BaSui01/onboardflow/internal/telemetry"
)

const reloadInterval = 5 * time.Second

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, level := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("starting onboardflow",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, *configPath, level, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("onboardflow stopped")
}

// serve 阻塞运行 API 服务、指标服务与配置热更新，ctx 结束后优雅退出
func serve(ctx context.Context, cfg *config.Config, configPath string, level zap.AtomicLevel, logger *zap.Logger) error {
	otelProviders, err := telemetry.Init(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := otelProviders.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown error", zap.Error(err))
		}
	}()

	app, err := buildApp(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("component shutdown error", zap.Error(err))
		}
	}()

	httpManager := server.NewManager(app.Handler(), server.ConfigFrom(cfg.Server, cfg.Server.HTTPPort), logger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsManager := server.NewManager(metricsMux, server.ConfigFrom(cfg.Server, cfg.Server.MetricsPort), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpManager.Run(gctx) })
	g.Go(func() error { return metricsManager.Run(gctx) })
	g.Go(func() error {
		app.rateLimiter.Run(gctx)
		return nil
	})
	if configPath != "" {
		reloader := config.NewReloader(newLoader(configPath), configPath, reloadInterval, logger)
		reloader.OnReload(config.LevelUpdater(level, logger))
		g.Go(func() error {
			reloader.Run(gctx)
			return nil
		})
	}

	logger.Info("servers started",
		zap.Int("http_port", cfg.Server.HTTPPort),
		zap.Int("metrics_port", cfg.Server.MetricsPort),
		zap.Bool("hot_reload_enabled", configPath != ""),
	)

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// Handler API 路由加中间件链
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	health := handlers.NewHealthHandler(a.logger)
	for _, c := range a.healthChecks() {
		health.RegisterCheck(c)
	}
	mux.HandleFunc("GET /health", health.HandleHealth)
	mux.HandleFunc("GET /healthz", health.HandleHealthz)
	mux.HandleFunc("GET /ready", health.HandleReady)
	mux.HandleFunc("GET /readyz", health.HandleReady)
	mux.HandleFunc("GET /version", health.HandleVersion(Version, BuildTime, GitCommit))

	srv := a.cfg.Server
	handlers.NewOnboardingHandler(a.sessions, srv.MaxUploadBytes, a.logger).Register(mux)
	handlers.NewEmployeeHandler(a.store, a.logger).Register(mux)
	handlers.NewChatSocketHandler(a.sessions, srv.CORSAllowedOrigins, srv.MaxUploadBytes, a.logger).Register(mux)

	return Chain(mux,
		Recovery(a.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		MetricsMiddleware(a.collector),
		RequestLogger(a.logger),
		CORS(srv.CORSAllowedOrigins),
		a.rateLimiter.Middleware(),
	)
}
