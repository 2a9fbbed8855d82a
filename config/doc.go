// Package config 提供 onboardflow 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → ONBOARDFLOW_ 前缀环境变量 的顺序叠加，
// 加载后统一校验。Reloader 轮询配置文件，支持运行时调整日志级别。
package config
