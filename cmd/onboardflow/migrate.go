package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/BaSui01/onboardflow/internal/migration"
)

// =============================================================================
// 🗄️ migrate 命令
// =============================================================================

func runMigrate(args []string) {
	if len(args) < 1 {
		printMigrateUsage()
		os.Exit(1)
	}
	sub := args[0]
	if sub == "help" || sub == "-h" || sub == "--help" {
		printMigrateUsage()
		return
	}

	fs := flag.NewFlagSet("migrate "+sub, flag.ExitOnError)
	m, err := createMigrator(fs, args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create migrator: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	if err := migrateCommand(context.Background(), migration.NewCLI(m), sub, fs.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s failed: %v\n", sub, err)
		os.Exit(1)
	}
}

// migrateCommand 执行一个迁移子命令，args 为去掉 flag 后的位置参数
func migrateCommand(ctx context.Context, cli *migration.CLI, sub string, args []string, out io.Writer) error {
	cli.SetOutput(out)
	switch sub {
	case "up":
		return cli.RunUp(ctx)
	case "down":
		return cli.RunDown(ctx)
	case "status":
		return cli.RunStatus(ctx)
	case "version":
		return cli.RunVersion(ctx)
	case "steps":
		n, err := intArg(args, "steps")
		if err != nil {
			return err
		}
		return cli.RunSteps(ctx, n)
	case "force":
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return cli.RunForce(ctx, v)
	default:
		return fmt.Errorf("unknown migrate subcommand: %s", sub)
	}
}

func intArg(args []string, name string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one <%s> argument", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, args[0], err)
	}
	return n, nil
}

// createMigrator --db-type 与 --db-url 同时给出时直接使用，否则读取配置中的 database 段
func createMigrator(fs *flag.FlagSet, args []string) (*migration.DefaultMigrator, error) {
	configPath := fs.String("config", "", "Path to config file")
	dbType := fs.String("db-type", "", "Database type (postgres, mysql, sqlite)")
	dbURL := fs.String("db-url", "", "Database connection URL")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *dbType != "" && *dbURL != "" {
		return migration.NewMigratorFromURL(*dbType, *dbURL)
	}

	cfg, err := newLoader(*configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if *dbType != "" {
		cfg.Database.Driver = *dbType
	}
	return migration.NewMigratorFromDatabaseConfig(cfg.Database)
}

func printMigrateUsage() {
	fmt.Println(`Database Migration Commands

Usage:
  onboardflow migrate <subcommand> [options] [args]

Subcommands:
  up            Apply all pending migrations
  down          Rollback the last migration
  steps <n>     Apply n migrations, or rollback when n is negative
  status        Show migration status
  version       Show current migration version
  force <v>     Force set migration version (use with caution)

Options:
  --config <path>     Path to configuration file (YAML)
  --db-type <type>    Database type: postgres, mysql, sqlite (default: from config)
  --db-url <url>      Database connection URL (default: from config)

Examples:
  onboardflow migrate up --config /etc/onboardflow/config.yaml
  onboardflow migrate status --db-type sqlite --db-url file:employees.db
  onboardflow migrate steps -- -1
  onboardflow migrate force 1`)
}

