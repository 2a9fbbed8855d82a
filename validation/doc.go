// Package validation 提供员工字段的纯函数校验：电话号码规范化为纯数字，
// 薪资去掉货币与千分位后解析为非负数，姓名与职位做 Unicode 规范化。
package validation
