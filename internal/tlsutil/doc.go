// Package tlsutil 提供统一的 TLS 配置。
//
// llm/providers 的 HTTP 客户端使用 HTTPClient；
// internal/server 以 TLS 方式启动时使用 ServerConfig。
package tlsutil
