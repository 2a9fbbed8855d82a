// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package events 发布入职领域事件。

Publisher 实现 workflow.Observer，可直接挂到工作流上：

	onboarding.record.committed           记录提交成功
	onboarding.session.<id>.transition    会话状态转换

主题前缀可配置。NATSPublisher 用 JSON 编码载荷；未启用 NATS 时使用
LogPublisher 或 Nop。发布失败只记录日志，不影响工作流。
*/
package events
