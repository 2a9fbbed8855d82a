// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 是 onboardflow 的可执行入口。

# 子命令

  - serve：启动 HTTP API（会话事件、上传、员工列表、websocket）与独立的 /metrics 端口
  - chat：在终端里跑一个入职会话，支持 /upload、/edit、/confirm、/cancel
  - migrate：employees 表的数据库迁移（up、down、steps、status、version、force）
  - health：请求 /ready，服务就绪时返回 0
  - version：打印构建信息

# 组装

buildApp 按配置创建记录存储、LLM Provider、抽取器（可选 Redis 缓存）、
事件发布器与会话控制器；serve 与 chat 共用同一套组件。
中间件链依次为 Recovery、RequestID、SecurityHeaders、OTelTracing、
MetricsMiddleware、RequestLogger、CORS 与按 IP 限流。

指定 --config 时每隔几秒检查一次配置文件，日志级别随文件变化即时生效。
Version、BuildTime、GitCommit 通过 ldflags 注入。
*/
package main
