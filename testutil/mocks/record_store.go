// MockRecordStore 记录存储的测试模拟实现。
//
// 数据保存在内存中，支持错误注入、阻塞与调用计数：
//
//	st := mocks.NewMockRecordStore().WithAppendError(errUnavailable)
//	wf := workflow.New("s1", cfg, v, ex, st)
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/types"
)

// MockRecordStore 是 store.RecordStore 的模拟实现
type MockRecordStore struct {
	mu sync.Mutex

	keys    map[string]bool
	records []types.EmployeeRecord

	// 错误注入
	existsErr error
	appendErr error
	failTimes int // appendErr 只生效前 N 次，0 表示一直生效
	block     bool

	// 调用记录
	existsCalls int
	appendCalls int
}

var _ store.RecordStore = (*MockRecordStore)(nil)

// NewMockRecordStore 创建新的 MockRecordStore
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{keys: make(map[string]bool)}
}

// WithExistsError 设置 Exists 的错误
func (m *MockRecordStore) WithExistsError(err error) *MockRecordStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsErr = err
	return m
}

// WithAppendError 设置 Append 的错误
func (m *MockRecordStore) WithAppendError(err error) *MockRecordStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendErr = err
	return m
}

// WithAppendFailures 前 n 次 Append 返回 err，之后恢复正常
func (m *MockRecordStore) WithAppendFailures(n int, err error) *MockRecordStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendErr = err
	m.failTimes = n
	return m
}

// WithBlock Exists 与 Append 阻塞到 ctx 结束
func (m *MockRecordStore) WithBlock() *MockRecordStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = true
	return m
}

// WithKey 预置一个已存在的键
func (m *MockRecordStore) WithKey(key string) *MockRecordStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = true
	return m
}

func (m *MockRecordStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	m.existsCalls++
	block, err := m.block, m.existsErr
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return false, &store.Error{Kind: store.KindUnavailable, Op: "exists", Cause: ctx.Err()}
	}
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key], nil
}

func (m *MockRecordStore) Append(ctx context.Context, key string, rec types.EmployeeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendCalls++
	if m.appendErr != nil {
		if m.failTimes == 0 {
			return m.appendErr
		}
		if m.failTimes > 0 {
			m.failTimes--
			err := m.appendErr
			if m.failTimes == 0 {
				m.appendErr = nil
			}
			return err
		}
	}
	if m.keys[key] {
		return store.ErrDuplicateKey
	}
	m.keys[key] = true
	m.records = append(m.records, rec)
	return nil
}

func (m *MockRecordStore) List(ctx context.Context, limit int) ([]types.EmployeeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.records
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	return append([]types.EmployeeRecord(nil), recs...), nil
}

func (m *MockRecordStore) Ping(ctx context.Context) error { return nil }
func (m *MockRecordStore) Close() error                   { return nil }

// Records 返回已写入的记录
func (m *MockRecordStore) Records() []types.EmployeeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.EmployeeRecord(nil), m.records...)
}

// GetAppendCalls 返回 Append 调用次数
func (m *MockRecordStore) GetAppendCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendCalls
}

// GetExistsCalls 返回 Exists 调用次数
func (m *MockRecordStore) GetExistsCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.existsCalls
}
