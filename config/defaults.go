// =============================================================================
// 📦 onboardflow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值，零配置即可用内存存储启动
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Log:        DefaultLogConfig(),
		LLM:        DefaultLLMConfig(),
		Extraction: DefaultExtractionConfig(),
		Onboarding: DefaultOnboardingConfig(),
		Session:    DefaultSessionConfig(),
		Store:      DefaultStoreConfig(),
		Database:   DefaultDatabaseConfig(),
		Redis:      DefaultRedisConfig(),
		Mongo:      DefaultMongoConfig(),
		NATS:       DefaultNATSConfig(),
		Telemetry:  DefaultTelemetryConfig(),
		Chat:       DefaultChatConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    90 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
		MaxUploadBytes:  10 << 20,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		OutputPaths:  []string{"stdout"},
		EnableCaller: true,
	}
}

// DefaultLLMConfig 返回默认模型配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Timeout:  30 * time.Second,
	}
}

// DefaultExtractionConfig 返回默认抽取配置
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Timeout:       30 * time.Second,
		MaxInputChars: 20000,
		Temperature:   0,
		MaxRetries:    2,
		Concurrency:   4,
		MaxRows:       200,
		CacheTTL:      24 * time.Hour,
	}
}

// DefaultOnboardingConfig 返回默认入职流程配置
func DefaultOnboardingConfig() OnboardingConfig {
	return OnboardingConfig{
		RequiredFields: []string{"name", "phone", "designation", "salary"},
		UniquenessKey:  "phone",
		PhoneMinDigits: 10,
		PhoneMaxDigits: 15,
		MaxTextLength:  100,
		OnboardCommand: "onboard",
		CommitTimeout:  10 * time.Second,
	}
}

// DefaultSessionConfig 返回默认会话配置
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		IdleTimeout:   30 * time.Minute,
		SweepInterval: time.Minute,
		MaxSessions:   10000,
		MailboxSize:   16,
		BusyPolicy:    "queue",
		HistoryLimit:  50,
	}
}

// DefaultStoreConfig 返回默认存储配置
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend: "memory",
		CSVPath: "employees.csv",
		Timeout: 5 * time.Second,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Host:            "localhost",
		Port:            5432,
		User:            "onboardflow",
		Name:            "onboardflow.db",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		AutoMigrate:     true,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		KeyPrefix:    "onboardflow:",
	}
}

// DefaultMongoConfig 返回默认 MongoDB 配置
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "onboardflow",
		Collection:     "employees",
		ConnectTimeout: 10 * time.Second,
	}
}

// DefaultNATSConfig 返回默认事件发布配置
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://127.0.0.1:4222",
		SubjectPrefix: "onboarding",
		ClientName:    "onboardflow",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "onboardflow",
		SampleRate:   0.1,
	}
}

// DefaultChatConfig 返回默认对话配置
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Enabled: true,
		SystemPrompt: "You are a friendly HR assistant. Answer briefly. " +
			"If the user wants to add a new employee, tell them to type 'Onboard'.",
		HistoryWindow: 10,
		Temperature:   0.7,
		MaxTokens:     512,
		Timeout:       30 * time.Second,
	}
}
