// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package workflow 实现入职对话的状态机。

# 状态

	Idle
	AwaitingInputMethod
	CollectingManualField(field)
	AwaitingExtraction
	ReviewingDraft
	Committed
	Failed(reason)

合法转换集中定义在 validTransitions 中，CanTransition 用于校验。
Workflow.Handle 对任意 (状态, 事件) 组合都有定义：不属于入职流程的文本
以 Passthrough 交回调用方做普通对话；在录入与审核状态下则重新提示。

# 事件

text、fileUpload、fieldEdit、confirm、cancel 五种。文本中的 "cancel"、
"reset"、"save"、"edit <field> <value>"、"<field>: <value>" 等会被识别为对应操作。

# 错误

  - 校验错误：留在原状态，草稿不变，字段错误写入草稿
  - 抽取错误：回到 AwaitingInputMethod，可重新上传或改为手工录入
  - 重复键：留在 ReviewingDraft
  - 存储不可用：进入 Failed，草稿保留，"save" 重试
  - 取消：回到事件到达前的状态

# 批量上传

上传表格的每一行单独抽取。第一行进入审核，其余行排队，每次提交成功后
下一行直接进入 ReviewingDraft。
*/
package workflow
