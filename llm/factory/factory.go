// Package factory 根据配置创建 LLM Provider。
// 放在独立的包中，避免 llm 包反向依赖各个 provider 子包。
package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BaSui01/onboardflow/config"
	"github.com/BaSui01/onboardflow/llm"
	"github.com/BaSui01/onboardflow/llm/providers"
	"github.com/BaSui01/onboardflow/llm/providers/gemini"
	"github.com/BaSui01/onboardflow/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// ErrDisabled provider 配置为 none，或缺少访问官方服务所需的 API Key
var ErrDisabled = errors.New("llm provider disabled")

// NewProviderFromConfig 按 provider 名称创建实例。
//
// 支持 openai（含任意 OpenAI 兼容服务，通过 base_url 指定）与 gemini。
// 返回 ErrDisabled 时调用方应以无模型模式运行：抽取不可用，普通对话使用固定回复。
func NewProviderFromConfig(cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch name {
	case "", "none":
		return nil, ErrDisabled

	case "openai":
		// 官方服务必须有 key；自建的兼容服务（Ollama、vLLM 等）可以不需要
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: openai requires api_key or base_url", ErrDisabled)
		}
		if cfg.BaseURL != "" {
			logger.Info("creating OpenAI-compatible provider", zap.String("base_url", cfg.BaseURL))
		}
		return openaicompat.New(openaicompat.Config{
			ProviderName: "openai",
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Timeout:      cfg.Timeout,
		}, logger), nil

	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini requires api_key", ErrDisabled)
		}
		return gemini.NewGeminiProvider(gemini.Config{
			BaseProviderConfig: providers.BaseProviderConfig{
				APIKey:  cfg.APIKey,
				BaseURL: cfg.BaseURL,
				Model:   cfg.Model,
				Timeout: cfg.Timeout,
			},
		}, logger), nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q (supported: %s)", cfg.Provider, strings.Join(SupportedProviders(), ", "))
	}
}

// SupportedProviders 返回内置 provider 名称
func SupportedProviders() []string {
	return []string{"openai", "gemini", "none"}
}
