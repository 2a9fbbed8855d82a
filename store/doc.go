// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package store 实现员工记录的追加写入存储。

RecordStore 只暴露 Exists、Append、List 三个数据操作，Append 自带唯一键检查，
并发提交同一键时只有一个成功。错误统一为 *Error：

  - KindDuplicateKey：键已存在，可恢复，草稿保持在审核状态
  - KindUnavailable：介质不可用，本次提交失败，草稿保留

New 按 config.StoreConfig.Backend 选择后端，并用 Instrument 包上单次操作超时与指标。
*/
package store
