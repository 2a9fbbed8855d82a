package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/internal/database"
	"github.com/BaSui01/onboardflow/internal/migration"
	"github.com/BaSui01/onboardflow/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps 可在多个组件间共享的连接
type Deps struct {
	// Redis 共享客户端，为空时按配置新建
	Redis redis.UniversalClient
	// Observer 指标观察者
	Observer Observer
}

// New 按配置创建记录存储，返回值已带超时与指标包装
func New(ctx context.Context, cfg *config.Config, deps Deps, logger *zap.Logger) (RecordStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := Backend(strings.ToLower(cfg.Store.Backend))

	var (
		s   RecordStore
		err error
	)
	switch backend {
	case BackendMemory:
		s = NewMemoryStore()
	case BackendCSV:
		s, err = NewCSVStore(cfg.Store.CSVPath, types.UniquenessKey(strings.ToLower(cfg.Onboarding.UniquenessKey)), logger)
	case BackendSQL:
		s, err = openSQL(cfg.Database, logger)
	case BackendRedis:
		if deps.Redis != nil {
			s = NewRedisStore(deps.Redis, cfg.Redis.KeyPrefix)
		} else {
			s, err = NewRedisStoreFromOptions(ctx, &redis.Options{
				Addr:         cfg.Redis.Addr,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.DB,
				PoolSize:     cfg.Redis.PoolSize,
				MinIdleConns: cfg.Redis.MinIdleConns,
			}, cfg.Redis.KeyPrefix)
		}
	case BackendMongo:
		timeout := cfg.Mongo.ConnectTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		mctx, cancel := context.WithTimeout(ctx, timeout)
		s, err = NewMongoStore(mctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		cancel()
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", backend, err)
	}

	logger.Info("record store ready", zap.String("backend", string(backend)))
	return Instrument(s, backend,
		WithOpTimeout(cfg.Store.Timeout),
		WithStoreObserver(deps.Observer),
		WithLogger(logger),
	), nil
}

// openSQL 按需执行迁移后打开连接池
func openSQL(cfg config.DatabaseConfig, logger *zap.Logger) (*SQLStore, error) {
	if cfg.AutoMigrate {
		m, err := migration.NewMigratorFromDatabaseConfig(cfg)
		if err != nil {
			return nil, err
		}
		upErr := m.Up(context.Background())
		closeErr := m.Close()
		if upErr != nil {
			return nil, fmt.Errorf("auto migrate: %w", upErr)
		}
		if closeErr != nil {
			logger.Warn("failed to close migrator", zap.Error(closeErr))
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := database.NewPoolManager(db, database.PoolConfigFrom(cfg), logger)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return NewSQLStore(pool, logger), nil
}
