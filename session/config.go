package session

import (
	"time"

	"github.com/BaSui01/onboardflow/config"
)

// BusyPolicy 有操作进行中时新事件的处理策略
type BusyPolicy string

const (
	// PolicyQueue 排队等待，队列满时返回 busy
	PolicyQueue BusyPolicy = "queue"
	// PolicyReject 有事件在处理或排队时直接返回 busy
	PolicyReject BusyPolicy = "reject"
)

// Config 会话控制器配置
type Config struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	MaxSessions   int
	MailboxSize   int
	BusyPolicy    BusyPolicy
	HistoryLimit  int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		IdleTimeout:   30 * time.Minute,
		SweepInterval: time.Minute,
		MaxSessions:   10000,
		MailboxSize:   16,
		BusyPolicy:    PolicyQueue,
		HistoryLimit:  200,
	}
}

// ConfigFrom 从全局配置构造，未设置的项使用默认值
func ConfigFrom(c config.SessionConfig) Config {
	cfg := Config{
		IdleTimeout:   c.IdleTimeout,
		SweepInterval: c.SweepInterval,
		MaxSessions:   c.MaxSessions,
		MailboxSize:   c.MailboxSize,
		BusyPolicy:    BusyPolicy(c.BusyPolicy),
		HistoryLimit:  c.HistoryLimit,
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = def.IdleTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = def.MaxSessions
	}
	if c.MailboxSize <= 0 {
		c.MailboxSize = def.MailboxSize
	}
	if c.BusyPolicy != PolicyReject {
		c.BusyPolicy = PolicyQueue
	}
	if c.HistoryLimit < 0 {
		c.HistoryLimit = 0
	}
	return c
}
