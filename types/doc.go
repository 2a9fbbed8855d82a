// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 onboardflow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 validation、extraction、
store、workflow、session、api 等上层模块提供统一的类型契约。

# 核心类型

  - Field：员工记录字段（name / phone / designation / salary）
  - EmployeeRecord：已校验、规范化的员工记录，提交后不可变
  - PartialRecord：字段全部可选的候选记录（抽取结果或录入中的草稿）
  - UniquenessKey：重复检测所用的唯一键策略
  - Error / ErrorCode：结构化错误体系，含 HTTP 状态码、Retryable、Field 标记

# 错误工具链

  - AsError / GetErrorCode / IsErrorCode / IsRetryable
  - Coder 接口：组件错误（PhoneError、store.Error 等）可转换为 *Error
*/
package types
