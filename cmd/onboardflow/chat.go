package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/api/handlers"
	"github.com/BaSui01/onboardflow/session"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

const (
	chatSessionID = "terminal"
	chatPrompt    = "> "
)

// =============================================================================
// 💬 chat 命令：在终端里跑一个会话
// =============================================================================

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// 终端模式下日志写到 stderr，默认只看警告
	if cfg.Log.Level != "error" {
		cfg.Log.Level = "warn"
	}
	cfg.Log.OutputPaths = []string{"stderr"}
	logger, _ := initLogger(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := buildApp(ctx, cfg, prometheus.NewRegistry(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := repl(ctx, app.sessions, os.Stdin, os.Stdout, os.ReadFile); err != nil {
		logger.Error("chat ended with error", zap.Error(err))
		os.Exit(1)
	}
}

// repl 逐行读取输入并转成会话事件，直到 EOF、/quit 或 ctx 结束。
//
// 斜杠命令:
//
//	/upload <path>   上传 CSV/TSV/XLSX 或文本文件
//	/edit <field> <value>
//	/confirm, /cancel
//	/quit
func repl(ctx context.Context, sessions handlers.SessionService, in io.Reader, out io.Writer, readFile func(string) ([]byte, error)) error {
	fmt.Fprintln(out, "onboardflow terminal chat. Type /quit to exit.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		ev, err := parseLine(line, readFile)
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}

		resp, err := sessions.HandleEvent(ctx, chatSessionID, ev)
		switch {
		case errors.Is(err, session.ErrClosed), ctx.Err() != nil:
			return nil
		case err != nil:
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}
		printResponse(out, resp)
	}
}

// parseLine 把一行输入转成事件；普通文本原样作为 text 事件
func parseLine(line string, readFile func(string) ([]byte, error)) (workflow.Event, error) {
	if !strings.HasPrefix(line, "/") {
		return workflow.Text(line), nil
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "/upload":
		if rest == "" {
			return workflow.Event{}, errors.New("usage: /upload <path>")
		}
		data, err := readFile(rest)
		if err != nil {
			return workflow.Event{}, fmt.Errorf("read %s: %w", rest, err)
		}
		return workflow.FileUpload(filepath.Base(rest), data), nil
	case "/edit":
		field, value, ok := strings.Cut(rest, " ")
		if !ok {
			return workflow.Event{}, errors.New("usage: /edit <field> <value>")
		}
		f, ok := types.ParseField(field)
		if !ok {
			return workflow.Event{}, fmt.Errorf("unknown field %q", field)
		}
		return workflow.FieldEdit(f, strings.TrimSpace(value)), nil
	case "/confirm":
		return workflow.Confirm(), nil
	case "/cancel":
		return workflow.Cancel(), nil
	default:
		return workflow.Event{}, fmt.Errorf("unknown command %s", cmd)
	}
}

func printResponse(out io.Writer, resp session.Response) {
	if resp.Welcome != "" {
		fmt.Fprintln(out, resp.Welcome)
	}
	if resp.Message != "" {
		fmt.Fprintln(out, resp.Message)
	}
	if resp.Error != nil {
		fmt.Fprintf(out, "! [%s] %s\n", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Options) > 0 {
		fmt.Fprintf(out, "  options: %s\n", strings.Join(resp.Options, " / "))
	}
	if resp.Pending > 0 {
		fmt.Fprintf(out, "  %d more row(s) waiting for review\n", resp.Pending)
	}
}
