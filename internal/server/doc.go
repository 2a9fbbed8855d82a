// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供 HTTP/HTTPS 服务器生命周期管理。

# 核心类型

  - Manager：持有 http.Server、net.Listener 与异步错误通道，
    提供 Start/StartTLS/Shutdown/Run。
  - Config：监听地址、读写超时、空闲超时、最大请求头大小与优雅关闭超时。

# 主要能力

  - 非阻塞启动：Start/StartTLS 在后台 goroutine 中运行服务。
  - Run：阻塞到 ctx 结束或服务异常退出，然后优雅关闭；
    serve 命令用它同时托管 API 端口与 metrics 端口。
  - 错误传播：Errors() 返回异步错误通道。
  - TLS：StartTLS 使用 tlsutil.ServerConfig。
  - Addr：启动后返回实际监听地址，端口 0 时可用于测试。
*/
package server
