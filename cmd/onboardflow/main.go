// =============================================================================
// onboardflow 主入口
// =============================================================================
// 使用方法:
//
//	onboardflow serve                       # 启动 HTTP 服务
//	onboardflow serve --config config.yaml  # 指定配置文件
//	onboardflow chat                        # 终端对话
//	onboardflow migrate up                  # 运行数据库迁移
//	onboardflow health                      # 健康检查
//	onboardflow version                     # 显示版本信息
// =============================================================================

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/onboardflow/config"
)

// 构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const envPrefix = "ONBOARDFLOW"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "chat":
		runChat(os.Args[2:])
	case "migrate":
		runMigrate(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadConfig 读取配置文件与 ONBOARDFLOW_ 前缀的环境变量并校验
func loadConfig(path string) (*config.Config, error) {
	loader := newLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLoader(path string) *config.Loader {
	loader := config.NewLoader().WithEnvPrefix(envPrefix)
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	return loader
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	fs.Parse(args)

	if err := checkHealth(&http.Client{Timeout: 5 * time.Second}, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func checkHealth(client *http.Client, addr string) error {
	resp, err := client.Get(addr + "/ready")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("onboardflow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`onboardflow - conversational employee onboarding

Usage:
  onboardflow <command> [options]

Commands:
  serve     Start the HTTP API server
  chat      Run an onboarding conversation in the terminal
  migrate   Database migration commands
  version   Show version information
  health    Check server readiness
  help      Show this help message

Options for 'serve' and 'chat':
  --config <path>   Path to configuration file (YAML)

Migration subcommands:
  migrate up          Apply all pending migrations
  migrate down        Rollback the last migration
  migrate steps <n>   Apply (n>0) or rollback (n<0) n migrations
  migrate status      Show migration status
  migrate version     Show current migration version
  migrate force <v>   Force set migration version

Environment:
  Every config key can be overridden with ONBOARDFLOW_<SECTION>_<KEY>,
  e.g. ONBOARDFLOW_LLM_API_KEY or ONBOARDFLOW_STORE_BACKEND.

Examples:
  onboardflow serve --config /etc/onboardflow/config.yaml
  onboardflow chat
  onboardflow migrate up --config config.yaml
  onboardflow health --addr http://localhost:8080`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

// initLogger 按配置构建 logger。返回的 AtomicLevel 供配置热更新调整级别
func initLogger(cfg config.LogConfig) (*zap.Logger, zap.AtomicLevel) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zapcore.InfoLevel)
		}
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:             level,
		Development:       cfg.Format == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger, level
}
