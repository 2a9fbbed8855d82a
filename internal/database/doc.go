// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 按配置打开 GORM 数据库并管理连接池。

# 概述

Open 根据 config.DatabaseConfig.Driver 选择 sqlite（modernc 纯 Go 驱动）、
postgres 或 mysql 方言；PoolManager 负责连接池参数、后台健康检查
与事务重试，供 SQL 记录存储使用。

# 核心类型

  - PoolManager：DB()、Dialect()、Ping()、Stats()、Close()。
  - PoolConfig：最大连接数、空闲连接数、生命周期与健康检查间隔。
  - TransactionFunc：事务回调函数类型。

# 事务

WithTransaction 执行单次事务；WithTransactionRetry 在死锁、
序列化失败、sqlite 忙等可重试错误上指数退避重试。
*/
package database
