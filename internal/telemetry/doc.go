// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 集中配置 TracerProvider 和 MeterProvider。
// 当遥测功能禁用时，使用 noop 实现，不连接任何外部服务。
//
// WorkflowObserver 把入职状态转换和提交记为 OTel 计数器，随 OTLP 一起导出。
package telemetry
