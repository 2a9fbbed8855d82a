// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集。

# 概述

Collector 统一注册指标，namespace 默认 onboardflow。它同时实现各组件的
观测接口，组装时直接传给存储、抽取器、工作流和会话控制器即可。

# 指标

  - HTTP：http_requests_total{method,path,status}、
    http_request_duration_seconds、http_response_size_bytes
  - 抽取：extraction_requests_total{status}、extraction_duration_seconds
  - 存储：store_operations_total{backend,op,status}、
    store_operation_duration_seconds
  - 工作流：workflow_transitions_total{from,to}、records_committed_total
  - 会话：sessions_active、session_events_total{kind,outcome}、
    session_event_duration_seconds
  - 缓存：cache_lookups_total{cache,result}
*/
package metrics
