package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/llm"
)

// Role 对话角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn 一轮对话
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Responder 普通对话应答器
type Responder interface {
	Respond(ctx context.Context, history []Turn, text string) (string, error)
}

// Static 返回固定提示语
type Static struct {
	Command string
}

// Respond 实现 Responder
func (s Static) Respond(ctx context.Context, _ []Turn, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cmd := s.Command
	if cmd == "" {
		cmd = "onboard"
	}
	return fmt.Sprintf("I can help you onboard new employees. Type '%s' to start.", capitalize(cmd)), nil
}

const defaultSystemPrompt = "You are a friendly HR assistant. Answer briefly. " +
	"When the user wants to add an employee, tell them to type 'Onboard'."

// Config LLM 应答配置
type Config struct {
	SystemPrompt  string
	HistoryWindow int
	Model         string
	Temperature   float32
	MaxTokens     int
	Timeout       time.Duration
}

// ConfigFrom 从全局配置构造
func ConfigFrom(c config.ChatConfig, model string) Config {
	return Config{
		SystemPrompt:  c.SystemPrompt,
		HistoryWindow: c.HistoryWindow,
		Model:         model,
		Temperature:   float32(c.Temperature),
		MaxTokens:     c.MaxTokens,
		Timeout:       c.Timeout,
	}
}

// LLMResponder 调用模型生成回复
type LLMResponder struct {
	provider llm.Provider
	cfg      Config
	fallback Responder
	logger   *zap.Logger
}

var _ Responder = (*LLMResponder)(nil)

// NewLLMResponder 创建应答器。fallback 为 nil 时使用 Static。
func NewLLMResponder(provider llm.Provider, cfg Config, fallback Responder, logger *zap.Logger) *LLMResponder {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.HistoryWindow < 0 {
		cfg.HistoryWindow = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if fallback == nil {
		fallback = Static{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMResponder{
		provider: provider,
		cfg:      cfg,
		fallback: fallback,
		logger:   logger.With(zap.String("component", "chat")),
	}
}

// Respond 实现 Responder。模型调用失败时返回回落提示语，只有 ctx 取消才返回错误。
func (r *LLMResponder) Respond(ctx context.Context, history []Turn, text string) (string, error) {
	if r.provider == nil {
		return r.fallback.Respond(ctx, history, text)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	resp, err := r.provider.Completion(callCtx, &llm.ChatRequest{
		Model:       r.cfg.Model,
		Messages:    r.messages(history, text),
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		r.logger.Warn("chat completion failed", zap.Error(err))
		return r.fallback.Respond(ctx, history, text)
	}
	content, ok := resp.FirstContent()
	if !ok || strings.TrimSpace(content) == "" {
		return r.fallback.Respond(ctx, history, text)
	}
	return strings.TrimSpace(content), nil
}

func (r *LLMResponder) messages(history []Turn, text string) []llm.Message {
	if n := r.cfg.HistoryWindow; len(history) > n {
		history = history[len(history)-n:]
	}
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: r.cfg.SystemPrompt})
	for _, t := range history {
		role := llm.RoleUser
		if t.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: text})
}

// New 按配置选择应答器
func New(cfg config.ChatConfig, provider llm.Provider, model, command string, logger *zap.Logger) Responder {
	static := Static{Command: command}
	if !cfg.Enabled || provider == nil {
		return static
	}
	return NewLLMResponder(provider, ConfigFrom(cfg, model), static, logger)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
