// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 onboardflow 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 断言工具: AssertRecordEqual / AssertJSONEqual
  - 异步断言: AssertEventuallyTrue / AssertEventuallyEqual / WaitFor / WaitForChannel
  - 数据工具: MustJSON / MustParseJSON / CSV

# 子包

  - testutil/mocks: MockProvider（LLM Provider）、MockExtractor（抽取器）、
    MockRecordStore（记录存储），均支持 Builder 模式与错误注入
  - testutil/fixtures: 样例员工记录、表格行与模型响应

# 使用示例

	ctx := testutil.TestContext(t)
	ex := mocks.NewMockExtractor().WithResult(mocks.Candidate("Jane", "5551234567", "QA", "1000"))
	st := mocks.NewMockRecordStore()
*/
package testutil
