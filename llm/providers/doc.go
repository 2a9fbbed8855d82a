// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供跨模型服务商的通用适配能力，是 gemini、openaicompat
两个具体实现的公共基础层。

# 核心类型与函数

  - BaseProviderConfig：共享的基础配置（APIKey、BaseURL、Model、Timeout）
  - MapHTTPError：将 HTTP 状态码映射为语义化的 llm.Error（含 Retryable 标记）
  - ReadErrorMessage：解析上游错误响应体
  - UpstreamError：将网络层错误包装为 llm.Error
  - ChooseModel：请求模型 / 默认模型 / 兜底模型的选择
*/
package providers
