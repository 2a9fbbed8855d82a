// 配置文件轮询重载。
//
// 只有日志级别这类无需重建连接的配置支持热更新，其余变更在重启后生效。
package config

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reloader 定期检查配置文件修改时间，变化后重新加载并回调
type Reloader struct {
	loader   *Loader
	path     string
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	lastMod   time.Time
	callbacks []func(*Config)
}

// NewReloader 创建重载器；interval <= 0 时使用 5 秒
func NewReloader(loader *Loader, path string, interval time.Duration, logger *zap.Logger) *Reloader {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reloader{
		loader:   loader.WithConfigPath(path),
		path:     path,
		interval: interval,
		logger:   logger.With(zap.String("component", "config_reloader")),
	}
	if info, err := os.Stat(path); err == nil {
		r.lastMod = info.ModTime()
	}
	return r
}

// OnReload 注册重载回调
func (r *Reloader) OnReload(fn func(*Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, fn)
}

// Run 阻塞运行直到 ctx 取消
func (r *Reloader) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Check()
		}
	}
}

// Check 检查一次文件，有变化时重新加载；返回是否触发了重载
func (r *Reloader) Check() bool {
	info, err := os.Stat(r.path)
	if err != nil {
		return false
	}

	r.mu.Lock()
	if !info.ModTime().After(r.lastMod) {
		r.mu.Unlock()
		return false
	}
	r.lastMod = info.ModTime()
	callbacks := append([]func(*Config){}, r.callbacks...)
	r.mu.Unlock()

	cfg, err := r.loader.Load()
	if err != nil {
		// 新配置无效时保持旧配置
		r.logger.Warn("config reload rejected", zap.Error(err))
		return false
	}

	r.logger.Info("config reloaded", zap.String("path", r.path))
	for _, fn := range callbacks {
		fn(cfg)
	}
	return true
}

// LevelUpdater 返回把新配置的日志级别写入 level 的回调
func LevelUpdater(level zap.AtomicLevel, logger *zap.Logger) func(*Config) {
	return func(cfg *Config) {
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			logger.Warn("ignoring invalid log level", zap.String("level", cfg.Log.Level))
			return
		}
		logger.Info("log level updated", zap.String("level", level.String()))
	}
}
