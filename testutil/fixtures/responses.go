// =============================================================================
// 📦 测试数据工厂 - LLM 响应测试数据
// =============================================================================
// 提供预定义的 LLM 响应数据，用于抽取器与对话测试
// =============================================================================
package fixtures

import (
	"fmt"
	"time"

	"github.com/BaSui01/onboardflow/llm"
)

// =============================================================================
// 🎯 ChatResponse 工厂
// =============================================================================

// SimpleResponse 返回简单的文本响应
func SimpleResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		ID:       "resp-001",
		Provider: "mock",
		Model:    "gpt-4o-mini",
		Choices: []llm.ChatChoice{
			{
				Index:        0,
				FinishReason: "stop",
				Message: llm.Message{
					Role:    llm.RoleAssistant,
					Content: content,
				},
			},
		},
		Usage: llm.ChatUsage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
		CreatedAt: time.Now(),
	}
}

// ExtractionJSON 抽取器期望的 JSON 对象
func ExtractionJSON(name, phone, designation, salary string) string {
	return fmt.Sprintf(`{"name":%q,"phone":%q,"designation":%q,"salary":%q}`, name, phone, designation, salary)
}

// ExtractionResponse 包含抽取结果的模型响应
func ExtractionResponse(name, phone, designation, salary string) *llm.ChatResponse {
	return SimpleResponse(ExtractionJSON(name, phone, designation, salary))
}

// FencedExtractionResponse 用 markdown 代码块包裹的抽取结果
func FencedExtractionResponse(name, phone, designation, salary string) *llm.ChatResponse {
	return SimpleResponse("Here you go:\n```json\n" + ExtractionJSON(name, phone, designation, salary) + "\n```")
}

// RefusalResponse 不含任何结构化数据的响应
func RefusalResponse(reason string) *llm.ChatResponse {
	return SimpleResponse("I cannot help with that: " + reason)
}

// TruncatedResponse 因长度被截断的响应
func TruncatedResponse(content string) *llm.ChatResponse {
	resp := SimpleResponse(content)
	resp.Choices[0].FinishReason = "length"
	return resp
}
