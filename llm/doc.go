/*
包 llm 提供统一的大语言模型接入层：Provider 抽象、错误语义与重试。

# 概述

onboardflow 在两处调用模型：extraction 包把表格/自由文本抽取为员工字段，
chat 包在非引导模式下生成普通对话回复。两者都只依赖 [Provider] 接口，
底层服务商（Gemini、OpenAI 兼容接口）可以通过配置切换。

# 核心接口

  - [Provider]：Completion / HealthCheck / Name
  - [Error]：带 Code、HTTPStatus、Retryable 的统一错误，配合 retry 包使用

# 子包

  - providers/gemini：Google Gemini generateContent 接口
  - providers/openaicompat：OpenAI Chat Completions 兼容接口
  - retry：指数退避重试器
*/
package llm
