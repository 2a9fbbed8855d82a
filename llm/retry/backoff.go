package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Policy 指数退避重试策略
type Policy struct {
	MaxRetries   int           // 最大重试次数（0 表示不重试）
	InitialDelay time.Duration // 首次重试前的等待
	MaxDelay     time.Duration // 单次等待上限
	Multiplier   float64       // 退避倍数
	Jitter       bool          // ±25% 随机抖动
	// RetryIf 判定错误是否值得重试，nil 时所有错误都重试
	RetryIf func(err error) bool
}

// Backoff 按 Policy 执行重试
type Backoff struct {
	policy Policy
	logger *zap.Logger
}

// NewBackoff 创建重试器，非法参数回落到默认值
func NewBackoff(p Policy, logger *zap.Logger) *Backoff {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier < 1.0 {
		p.Multiplier = 2.0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backoff{policy: p, logger: logger}
}

// Do 执行 fn，失败时按策略重试。
// ctx 结束后不再发起新的尝试；等待期间取消返回包装后的 ctx.Err()。
func Do[T any](ctx context.Context, b *Backoff, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= b.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := b.delay(attempt)
			b.logger.Debug("重试中",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", b.policy.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, fmt.Errorf("重试被取消: %w", ctx.Err())
			case <-timer.C:
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				b.logger.Info("重试成功", zap.Int("attempt", attempt))
			}
			return result, nil
		}
		lastErr = err

		// 调用方已放弃（超时或会话关闭）
		if ctx.Err() != nil {
			return zero, err
		}
		if b.policy.RetryIf != nil && !b.policy.RetryIf(err) {
			b.logger.Debug("错误不可重试", zap.Error(err))
			return zero, err
		}
	}

	b.logger.Warn("重试次数耗尽",
		zap.Int("attempts", b.policy.MaxRetries+1),
		zap.Error(lastErr),
	)
	return zero, fmt.Errorf("重试 %d 次后仍失败: %w", b.policy.MaxRetries, lastErr)
}

// delay 计算第 attempt 次重试前的等待：initial * multiplier^(attempt-1)，不超过 MaxDelay
func (b *Backoff) delay(attempt int) time.Duration {
	d := float64(b.policy.InitialDelay) * math.Pow(b.policy.Multiplier, float64(attempt-1))
	if d > float64(b.policy.MaxDelay) {
		d = float64(b.policy.MaxDelay)
	}
	if b.policy.Jitter {
		d += (rand.Float64()*2 - 1) * d * 0.25
	}
	if d < float64(b.policy.InitialDelay) {
		d = float64(b.policy.InitialDelay)
	}
	return time.Duration(d)
}
