// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供基于 Redis 的键值缓存，当前用于缓存抽取结果。

# 核心类型

  - Manager：持有 Redis 客户端，提供 Get/Set/Delete/Ping 与
    GetJSON/SetJSON 便捷序列化方法，所有键自动附加 KeyPrefix。
  - Config：地址、密码、连接池、默认 TTL 与健康检查间隔。

Manager 可以自行建立连接（NewManager），也可以复用记录存储的
Redis 客户端（NewManagerFromClient），后者 Close 时不关闭底层连接。
未命中返回 ErrCacheMiss，可用 IsCacheMiss 判断。
*/
package cache
