// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 onboardflow HTTP API 的请求处理器实现。

# 概述

所有 Handler 均遵循标准 net/http 接口，通过 Register 挂载到
http.ServeMux（使用 "METHOD /path/{id}" 形式的路由）。会话相关的处理器
只依赖 SessionService 接口，由 *session.Controller 实现。

# 核心类型

  - OnboardingHandler  会话事件、表格上传、快照查询与结束会话
  - EmployeeHandler    已提交员工记录列表
  - ChatSocketHandler  websocket 聊天，每帧一个事件
  - HealthHandler      健康检查（/health, /healthz, /ready, /version）
  - Response           统一 JSON 响应结构（success + data + error + timestamp）
  - ResponseWriter     包装 http.ResponseWriter 以捕获状态码与响应大小

# 错误映射

types.ErrorCode 到 HTTP 状态码的映射集中在 errorCodeStatus 表中。
工作流层面的错误（VALIDATION_FAILED、DUPLICATE_RECORD 等）是对话结果，
随 200 响应返回；会话层错误（SESSION_BUSY、SESSION_LIMIT、SESSION_CLOSED）
使用错误响应与对应状态码。
*/
package handlers
