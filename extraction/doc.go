/*
包 extraction 把自由文本或上传的表格文件转换为候选员工记录。

# 组成

  - [Extractor]：抽取接口，错误统一为 [*Error]（Timeout、UnparsableResponse、
    Unavailable、Cancelled、InvalidInput）。
  - [LLMExtractor]：基于 llm.Provider 的实现，带时限、输入截断、
    指数退避重试与 OpenTelemetry span。
  - [ParseResponse]：容错解析模型输出中的 JSON。
  - [ReadRows]：读取 CSV/TSV/XLSX/纯文本，自动识别分隔符与编码。
  - [ExtractRows]、[ExtractFile]：按行并发抽取，结果保持原顺序。
  - [CachedExtractor]：以输入摘要为键缓存成功的抽取结果。

抽取结果只是候选值，必须经 validation 包校验后才能进入草稿。
*/
package extraction
