// 配置加载器测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// fakeEnv 返回固定环境变量的查找函数
func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	l := NewLoader()
	l.lookupEnv = fakeEnv(nil)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "phone", cfg.Onboarding.UniquenessKey)
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9000
onboarding:
  uniqueness_key: phone+name
  required_fields: [name, phone]
store:
  backend: csv
  csv_path: /tmp/out.csv
session:
  idle_timeout: 10m
`)
	l := NewLoader().WithConfigPath(path)
	l.lookupEnv = fakeEnv(nil)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "phone+name", cfg.Onboarding.UniquenessKey)
	assert.Equal(t, []string{"name", "phone"}, cfg.Onboarding.RequiredFields)
	assert.Equal(t, "csv", cfg.Store.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout)
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	l := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml"))
	l.lookupEnv = fakeEnv(nil)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestLoader_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	_, err := NewLoader().WithConfigPath(path).Load()
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  http_port: 9000\n")
	l := NewLoader().WithConfigPath(path)
	l.lookupEnv = fakeEnv(map[string]string{
		"ONBOARDFLOW_SERVER_HTTP_PORT":            "7000",
		"ONBOARDFLOW_SESSION_IDLE_TIMEOUT":        "45s",
		"ONBOARDFLOW_EXTRACTION_TEMPERATURE":      "0.3",
		"ONBOARDFLOW_EXTRACTION_CACHE_ENABLED":    "true",
		"ONBOARDFLOW_ONBOARDING_REQUIRED_FIELDS":  "name, phone ,",
		"ONBOARDFLOW_SERVER_CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"ONBOARDFLOW_LLM_API_KEY":                 "sk-test",
		"ONBOARDFLOW_ONBOARDING_PHONE_MAX_DIGITS": "12",
		"ONBOARDFLOW_SERVER_MAX_UPLOAD_BYTES":     "2048",
		"ONBOARDFLOW_SESSION_BUSY_POLICY":         "reject",
		"ONBOARDFLOW_DATABASE_CONN_MAX_LIFETIME":  "1m",
		"ONBOARDFLOW_TELEMETRY_SAMPLE_RATE":       "1",
		"ONBOARDFLOW_ONBOARDING_UNIQUENESS_KEY":   "name",
		"ONBOARDFLOW_NATS_ENABLED":                "1",
		"ONBOARDFLOW_EXTRACTION_MAX_INPUT_CHARS":  "100",
		"ONBOARDFLOW_REDIS_KEY_PREFIX":            "hr:",
		"ONBOARDFLOW_CHAT_ENABLED":                "false",
		"ONBOARDFLOW_STORE_BACKEND":               "redis",
		"ONBOARDFLOW_MONGO_COLLECTION":            "staff",
		"ONBOARDFLOW_ONBOARDING_ONBOARD_COMMAND":  "hire",
		"ONBOARDFLOW_SERVER_RATE_LIMIT_RPS":       "0",
	})

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.HTTPPort)
	assert.Equal(t, 45*time.Second, cfg.Session.IdleTimeout)
	assert.InDelta(t, 0.3, cfg.Extraction.Temperature, 1e-9)
	assert.True(t, cfg.Extraction.CacheEnabled)
	assert.Equal(t, []string{"name", "phone"}, cfg.Onboarding.RequiredFields)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 12, cfg.Onboarding.PhoneMaxDigits)
	assert.Equal(t, int64(2048), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "reject", cfg.Session.BusyPolicy)
	assert.Equal(t, time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "name", cfg.Onboarding.UniquenessKey)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "hr:", cfg.Redis.KeyPrefix)
	assert.False(t, cfg.Chat.Enabled)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "staff", cfg.Mongo.Collection)
	assert.Equal(t, "hire", cfg.Onboarding.OnboardCommand)
	assert.Zero(t, cfg.Server.RateLimitRPS)
}

func TestLoader_CustomPrefix(t *testing.T) {
	l := NewLoader().WithEnvPrefix("HR")
	l.lookupEnv = fakeEnv(map[string]string{
		"HR_SERVER_HTTP_PORT":          "8181",
		"ONBOARDFLOW_SERVER_HTTP_PORT": "9999",
	})

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.HTTPPort)
}

func TestLoader_BadEnvValue(t *testing.T) {
	tests := map[string]string{
		"ONBOARDFLOW_SERVER_HTTP_PORT":      "eighty",
		"ONBOARDFLOW_SESSION_IDLE_TIMEOUT":  "soon",
		"ONBOARDFLOW_NATS_ENABLED":          "maybe",
		"ONBOARDFLOW_TELEMETRY_SAMPLE_RATE": "half",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			l := NewLoader()
			l.lookupEnv = fakeEnv(map[string]string{key: val})
			_, err := l.Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoader_CustomValidator(t *testing.T) {
	l := NewLoader().WithValidator(func(c *Config) error {
		if c.LLM.APIKey == "" {
			return assert.AnError
		}
		return nil
	})
	l.lookupEnv = fakeEnv(nil)

	_, err := l.Load()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: floppy\n")
	assert.Panics(t, func() { MustLoad(path) })
}

// --- Validate 测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }, "invalid HTTP port"},
		{"bad provider", func(c *Config) { c.LLM.Provider = "claude-ish" }, "llm.provider"},
		{"provider case", func(c *Config) { c.LLM.Provider = "Gemini" }, ""},
		{"unknown field", func(c *Config) { c.Onboarding.RequiredFields = []string{"name", "email"} }, "required_fields"},
		{"unknown key", func(c *Config) { c.Onboarding.UniquenessKey = "email" }, "uniqueness_key"},
		{"composite key", func(c *Config) { c.Onboarding.UniquenessKey = "phone+name" }, ""},
		{"digit bounds", func(c *Config) { c.Onboarding.PhoneMinDigits = 12; c.Onboarding.PhoneMaxDigits = 10 }, "phone digit bounds"},
		{"empty command", func(c *Config) { c.Onboarding.OnboardCommand = "  " }, "onboard_command"},
		{"zero idle", func(c *Config) { c.Session.IdleTimeout = 0 }, "idle_timeout"},
		{"busy policy", func(c *Config) { c.Session.BusyPolicy = "drop" }, "busy_policy"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "floppy" }, "store.backend"},
		{"csv without path", func(c *Config) { c.Store.Backend = "csv"; c.Store.CSVPath = "" }, "csv_path"},
		{"sql bad driver", func(c *Config) { c.Store.Backend = "sql"; c.Database.Driver = "oracle" }, "database.driver"},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }, "sample_rate"},
		{"max chars", func(c *Config) { c.Extraction.MaxInputChars = 0 }, "max_input_chars"},
		{"max rows", func(c *Config) { c.Extraction.MaxRows = 0 }, "max_rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "hr", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=hr sslmode=disable", d.DSN())

	d.Driver = "mysql"
	d.Port = 3306
	assert.Equal(t, "u:p@tcp(db:3306)/hr?parseTime=true", d.DSN())

	d.Driver = "sqlite"
	d.Name = "/tmp/hr.db"
	assert.Equal(t, "file:/tmp/hr.db?_pragma=busy_timeout(5000)", d.DSN())

	d.Driver = "oracle"
	assert.Empty(t, d.DSN())
}

// --- Reloader 测试 ---

func TestReloader_UpdatesLogLevel(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	l := NewLoader()
	l.lookupEnv = fakeEnv(nil)
	r := NewReloader(l, path, time.Millisecond, zap.NewNop())
	r.OnReload(LevelUpdater(level, zap.NewNop()))

	// 未修改时不触发
	assert.False(t, r.Check())

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.True(t, r.Check())
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestReloader_KeepsOldConfigOnInvalidFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	called := false

	l := NewLoader()
	l.lookupEnv = fakeEnv(nil)
	r := NewReloader(l, path, 0, nil)
	r.OnReload(func(*Config) { called = true })

	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: floppy\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.False(t, r.Check())
	assert.False(t, called)
}
