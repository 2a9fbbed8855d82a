// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 gemini 提供 Google Gemini 模型的 Provider 适配实现，直接对接
Gemini REST API（generativelanguage.googleapis.com）。

# 核心结构体

  - GeminiProvider：持有 http.Client 与 Config；使用 x-goog-api-key 请求头认证
  - geminiRequest / geminiResponse：Gemini 原生请求/响应结构

# 支持能力

  - Chat Completions（/v1beta/models/{model}:generateContent）
  - JSON 输出约束（generationConfig.responseMimeType）
  - HealthCheck（/v1beta/models）
*/
package gemini
