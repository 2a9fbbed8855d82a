// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package chat 提供入职流程之外的普通对话应答。

工作流把不属于入职流程的输入标记为 Passthrough，会话控制器再交给
Responder 生成回复。LLMResponder 调用模型并携带最近的对话历史；
模型不可用时回落到 Static 的固定提示语，普通对话不会因此失败。
*/
package chat
