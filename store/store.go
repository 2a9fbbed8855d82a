package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/BaSui01/onboardflow/types"
)

// Backend 存储后端类型
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendCSV    Backend = "csv"
	BackendSQL    Backend = "sql"
	BackendRedis  Backend = "redis"
	BackendMongo  Backend = "mongo"
)

// RecordStore 追加写入的员工记录存储。
//
// Append 必须原子地完成"键不存在则写入"，并发提交同一个键时只有一个成功。
type RecordStore interface {
	// Exists 判断唯一键是否已被占用
	Exists(ctx context.Context, key string) (bool, error)

	// Append 写入一条记录；键已存在时返回 ErrDuplicateKey
	Append(ctx context.Context, key string, rec types.EmployeeRecord) error

	// List 按写入顺序返回最近 limit 条记录，limit <= 0 表示全部
	List(ctx context.Context, limit int) ([]types.EmployeeRecord, error)

	// Ping 检查存储是否可用
	Ping(ctx context.Context) error

	// Close 释放资源
	Close() error
}

// ErrorKind 存储错误类型
type ErrorKind int

const (
	// KindDuplicateKey 唯一键已存在，可恢复
	KindDuplicateKey ErrorKind = iota + 1
	// KindUnavailable 存储介质不可用，本次提交失败
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindDuplicateKey:
		return "DuplicateKey"
	case KindUnavailable:
		return "Unavailable"
	}
	return "Unknown"
}

// Error 存储错误
type Error struct {
	Kind    ErrorKind
	Backend Backend
	Op      string
	Key     string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("store %s %s: %s", e.Backend, e.Op, e.Kind)
	if e.Key != "" && e.Kind == KindDuplicateKey {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is 按 Kind 匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) ToTypesError() *types.Error {
	if e.Kind == KindDuplicateKey {
		return types.NewError(types.ErrDuplicateRecord, "an employee with the same key already exists").
			WithHTTPStatus(http.StatusConflict)
	}
	return types.NewError(types.ErrPersistenceUnavailable, "record store is unavailable").
		WithHTTPStatus(http.StatusServiceUnavailable).
		WithRetryable(true).
		WithCause(e.Cause)
}

// 便于 errors.Is 匹配的哨兵值
var (
	ErrDuplicateKey = &Error{Kind: KindDuplicateKey}
	ErrUnavailable  = &Error{Kind: KindUnavailable}
)

// ErrClosed 存储已关闭
var ErrClosed = errors.New("store is closed")

func duplicate(b Backend, key string) error {
	return &Error{Kind: KindDuplicateKey, Backend: b, Op: "append", Key: key}
}

// unavailable 把底层错误包装为 Unavailable；已经是 *Error 的原样返回
func unavailable(b Backend, op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Kind: KindUnavailable, Backend: b, Op: op, Cause: err}
}

// IsDuplicate 判断是否为重复键错误
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicateKey) }

// IsUnavailable 判断是否为存储不可用
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// newest 返回切片末尾的 limit 个元素
func newest(recs []types.EmployeeRecord, limit int) []types.EmployeeRecord {
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	out := make([]types.EmployeeRecord, len(recs))
	copy(out, recs)
	return out
}

// reverse 原地反转，用于把按时间倒序查询的结果恢复成写入顺序
func reverse(recs []types.EmployeeRecord) {
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
}
