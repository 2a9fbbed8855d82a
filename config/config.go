package config

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 onboardflow 的完整配置结构
type Config struct {
	Server     ServerConfig     `yaml:"server" env:"SERVER"`
	Log        LogConfig        `yaml:"log" env:"LOG"`
	LLM        LLMConfig        `yaml:"llm" env:"LLM"`
	Extraction ExtractionConfig `yaml:"extraction" env:"EXTRACTION"`
	Onboarding OnboardingConfig `yaml:"onboarding" env:"ONBOARDING"`
	Session    SessionConfig    `yaml:"session" env:"SESSION"`
	Store      StoreConfig      `yaml:"store" env:"STORE"`
	Database   DatabaseConfig   `yaml:"database" env:"DATABASE"`
	Redis      RedisConfig      `yaml:"redis" env:"REDIS"`
	Mongo      MongoConfig      `yaml:"mongo" env:"MONGO"`
	NATS       NATSConfig       `yaml:"nats" env:"NATS"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" env:"TELEMETRY"`
	Chat       ChatConfig       `yaml:"chat" env:"CHAT"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTP 端口
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// Metrics 端口
	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
	// 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// 写入超时
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// 每 IP 每秒请求数，0 表示不限流
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// 突发请求数
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// 允许的跨域来源，空表示不开启 CORS
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	// 上传文件大小上限（字节）
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// LLMConfig 模型服务配置
type LLMConfig struct {
	// Provider: openai, gemini, none
	Provider string `yaml:"provider" env:"PROVIDER"`
	// API Key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 基础 URL（可选，OpenAI 兼容服务使用）
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 默认模型
	Model string `yaml:"model" env:"MODEL"`
	// HTTP 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// ExtractionConfig 抽取配置
type ExtractionConfig struct {
	// 单次抽取时限（含重试）
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 输入字符上限
	MaxInputChars int `yaml:"max_input_chars" env:"MAX_INPUT_CHARS"`
	// 采样温度
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	// 可重试错误的最大重试次数
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// 表格按行并发抽取的并发度
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
	// 单个上传文件最多抽取的行数，超出部分不处理
	MaxRows int `yaml:"max_rows" env:"MAX_ROWS"`
	// 是否用 Redis 缓存抽取结果
	CacheEnabled bool `yaml:"cache_enabled" env:"CACHE_ENABLED"`
	// 缓存过期时间
	CacheTTL time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
}

// OnboardingConfig 入职流程配置
type OnboardingConfig struct {
	// 手动录入时需要询问的字段，按顺序
	RequiredFields []string `yaml:"required_fields" env:"REQUIRED_FIELDS"`
	// 重复判定键: phone, name, phone+name
	UniquenessKey string `yaml:"uniqueness_key" env:"UNIQUENESS_KEY"`
	// 电话号码位数下限
	PhoneMinDigits int `yaml:"phone_min_digits" env:"PHONE_MIN_DIGITS"`
	// 电话号码位数上限
	PhoneMaxDigits int `yaml:"phone_max_digits" env:"PHONE_MAX_DIGITS"`
	// 姓名与职位的最大长度
	MaxTextLength int `yaml:"max_text_length" env:"MAX_TEXT_LENGTH"`
	// 启动入职流程的命令词
	OnboardCommand string `yaml:"onboard_command" env:"ONBOARD_COMMAND"`
	// 提交记录的时限
	CommitTimeout time.Duration `yaml:"commit_timeout" env:"COMMIT_TIMEOUT"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	// 空闲超时，超过后会话被回收
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	// 空闲扫描间隔
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
	// 最大并发会话数
	MaxSessions int `yaml:"max_sessions" env:"MAX_SESSIONS"`
	// 每个会话的事件队列长度
	MailboxSize int `yaml:"mailbox_size" env:"MAILBOX_SIZE"`
	// 有操作进行中时新事件的处理策略: queue, reject
	BusyPolicy string `yaml:"busy_policy" env:"BUSY_POLICY"`
	// 保留的对话轮数
	HistoryLimit int `yaml:"history_limit" env:"HISTORY_LIMIT"`
}

// StoreConfig 记录存储配置
type StoreConfig struct {
	// 后端: memory, csv, sql, redis, mongo
	Backend string `yaml:"backend" env:"BACKEND"`
	// csv 后端的文件路径
	CSVPath string `yaml:"csv_path" env:"CSV_PATH"`
	// 单次存储操作超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动类型: postgres, mysql, sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// 主机
	Host string `yaml:"host" env:"HOST"`
	// 端口
	Port int `yaml:"port" env:"PORT"`
	// 用户名
	User string `yaml:"user" env:"USER"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库名；sqlite 为文件路径
	Name string `yaml:"name" env:"NAME"`
	// SSL 模式
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// 最大连接数
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// 最大空闲连接
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// 连接最大生命周期
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	// 启动时自动执行迁移
	AutoMigrate bool `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 连接池大小
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// 最小空闲连接
	MinIdleConns int `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	// 键前缀
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	// 连接 URI
	URI string `yaml:"uri" env:"URI"`
	// 数据库名
	Database string `yaml:"database" env:"DATABASE"`
	// 集合名
	Collection string `yaml:"collection" env:"COLLECTION"`
	// 连接超时
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

// NATSConfig 事件发布配置
type NATSConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 服务地址
	URL string `yaml:"url" env:"URL"`
	// 主题前缀
	SubjectPrefix string `yaml:"subject_prefix" env:"SUBJECT_PREFIX"`
	// 客户端名称
	ClientName string `yaml:"client_name" env:"CLIENT_NAME"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// ChatConfig 非入职模式下的普通对话配置
type ChatConfig struct {
	// 是否调用模型回复；关闭时使用固定提示语
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 系统提示词
	SystemPrompt string `yaml:"system_prompt" env:"SYSTEM_PROMPT"`
	// 携带的历史轮数
	HistoryWindow int `yaml:"history_window" env:"HISTORY_WINDOW"`
	// 采样温度
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	// 最大输出 Token
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// 回复时限
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// =============================================================================
// 🔍 校验
// =============================================================================

var (
	knownFields     = map[string]bool{"name": true, "phone": true, "designation": true, "salary": true}
	knownKeys       = map[string]bool{"phone": true, "name": true, "phone+name": true}
	knownBackends   = map[string]bool{"memory": true, "csv": true, "sql": true, "redis": true, "mongo": true}
	knownProviders  = map[string]bool{"openai": true, "gemini": true, "none": true}
	knownDrivers    = map[string]bool{"postgres": true, "mysql": true, "sqlite": true}
	knownBusyPolicy = map[string]bool{"queue": true, "reject": true}
)

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, "invalid metrics port")
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, "server.max_upload_bytes must be positive")
	}

	if !knownProviders[strings.ToLower(c.LLM.Provider)] {
		errs = append(errs, fmt.Sprintf("unknown llm.provider %q", c.LLM.Provider))
	}

	if c.Extraction.Timeout <= 0 {
		errs = append(errs, "extraction.timeout must be positive")
	}
	if c.Extraction.MaxInputChars <= 0 {
		errs = append(errs, "extraction.max_input_chars must be positive")
	}
	if c.Extraction.MaxRows <= 0 {
		errs = append(errs, "extraction.max_rows must be positive")
	}
	if c.Extraction.Temperature < 0 || c.Extraction.Temperature > 2 {
		errs = append(errs, "extraction.temperature must be between 0 and 2")
	}

	for _, f := range c.Onboarding.RequiredFields {
		if !knownFields[strings.ToLower(strings.TrimSpace(f))] {
			errs = append(errs, fmt.Sprintf("unknown onboarding.required_fields entry %q", f))
		}
	}
	if !knownKeys[strings.ToLower(c.Onboarding.UniquenessKey)] {
		errs = append(errs, fmt.Sprintf("unknown onboarding.uniqueness_key %q", c.Onboarding.UniquenessKey))
	}
	if c.Onboarding.PhoneMinDigits <= 0 || c.Onboarding.PhoneMaxDigits < c.Onboarding.PhoneMinDigits {
		errs = append(errs, "onboarding phone digit bounds are inconsistent")
	}
	if strings.TrimSpace(c.Onboarding.OnboardCommand) == "" {
		errs = append(errs, "onboarding.onboard_command must not be empty")
	}

	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, "session.idle_timeout must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		errs = append(errs, "session.max_sessions must be positive")
	}
	if !knownBusyPolicy[strings.ToLower(c.Session.BusyPolicy)] {
		errs = append(errs, fmt.Sprintf("unknown session.busy_policy %q", c.Session.BusyPolicy))
	}

	if !knownBackends[strings.ToLower(c.Store.Backend)] {
		errs = append(errs, fmt.Sprintf("unknown store.backend %q", c.Store.Backend))
	}
	if strings.EqualFold(c.Store.Backend, "csv") && c.Store.CSVPath == "" {
		errs = append(errs, "store.csv_path is required for the csv backend")
	}
	if strings.EqualFold(c.Store.Backend, "sql") && !knownDrivers[strings.ToLower(c.Database.Driver)] {
		errs = append(errs, fmt.Sprintf("unknown database.driver %q", c.Database.Driver))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DSN 返回 gorm 使用的数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return "file:" + d.Name + "?_pragma=busy_timeout(5000)"
	default:
		return ""
	}
}
