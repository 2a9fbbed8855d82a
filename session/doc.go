/*
Package session 实现会话控制器。

每个会话对应一个 actor：独立协程、有界 FIFO 邮箱、自己的工作流与对话历史。
同一会话的事件严格按到达顺序逐个处理；不同会话之间没有共享锁。

  - busy 策略 queue：事件排队，邮箱满时返回 SESSION_BUSY
  - busy 策略 reject：有事件在处理时直接返回 SESSION_BUSY
  - cancel 事件入队前先取消正在进行的抽取或提交
  - EndSession 与空闲扫描会取消会话上下文，排队事件以 SESSION_CLOSED 返回
*/
package session
