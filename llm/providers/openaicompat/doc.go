// Package openaicompat provides a provider for any endpoint that speaks the
// OpenAI Chat Completions format (OpenAI itself, DeepSeek, Qwen, local
// servers such as Ollama or vLLM).
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    ProviderName:  "openai",
//	    APIKey:        cfg.APIKey,
//	    BaseURL:       "https://api.openai.com",
//	    DefaultModel:  "gpt-4o-mini",
//	}, logger)
package openaicompat
