package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/types"
)

// Cache 抽取结果缓存，由 internal/cache.Manager 实现
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedExtractor 以输入文本摘要为键缓存成功的抽取结果。
// 失败结果不缓存；缓存故障只记录日志，不影响抽取。
type CachedExtractor struct {
	next     Extractor
	cache    Cache
	ttl      time.Duration
	observer CacheObserver
	logger   *zap.Logger
}

// CacheObserver 接收缓存查询结果
type CacheObserver interface {
	ObserveCacheLookup(cache string, hit bool)
}

var _ Extractor = (*CachedExtractor)(nil)

// NewCachedExtractor 包装 next
func NewCachedExtractor(next Extractor, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedExtractor{next: next, cache: cache, ttl: ttl, logger: logger}
}

// WithObserver 设置缓存命中回调
func (c *CachedExtractor) WithObserver(o CacheObserver) *CachedExtractor {
	c.observer = o
	return c
}

// CacheKey 返回文本对应的缓存键
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "extract:" + hex.EncodeToString(sum[:])
}

func (c *CachedExtractor) Extract(ctx context.Context, text string) (types.CandidateRecord, error) {
	key := CacheKey(text)

	var hit types.CandidateRecord
	if err := c.cache.GetJSON(ctx, key, &hit); err == nil {
		c.observe(true)
		return hit, nil
	}
	c.observe(false)

	rec, err := c.next.Extract(ctx, text)
	if err != nil {
		return rec, err
	}
	if err := c.cache.SetJSON(ctx, key, rec, c.ttl); err != nil {
		c.logger.Warn("failed to cache extraction result", zap.Error(err))
	}
	return rec, nil
}

func (c *CachedExtractor) observe(hit bool) {
	if c.observer != nil {
		c.observer.ObserveCacheLookup("extraction", hit)
	}
}
