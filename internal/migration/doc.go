// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 migration 管理员工记录表的 Schema 迁移，支持 PostgreSQL、
MySQL 与 SQLite，基于 golang-migrate 实现。

# 概述

各方言的 SQL 迁移文件通过 embed.FS 内嵌，employees 表在
unique_key 列上建唯一索引，SQL 记录存储依赖该索引保证不重复。

# 核心类型

  - Migrator / DefaultMigrator：Up/Down/Steps/Force/Version/Status/Info。
  - Config：数据库类型、连接 URL、迁移表名与锁超时。
  - CLI：onboardflow migrate 子命令的输出层。

# 工厂函数

NewMigratorFromDatabaseConfig 从 config.DatabaseConfig 构建迁移器，
NewMigratorFromURL 直接使用连接 URL。
*/
package migration
