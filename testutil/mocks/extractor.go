// MockExtractor 抽取器的测试模拟实现。
//
// 支持固定结果、按输入文本匹配、阻塞直到取消以及错误注入。
package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/onboardflow/types"
)

// MockExtractor 满足 extraction.Extractor 接口
type MockExtractor struct {
	mu sync.Mutex

	result  types.CandidateRecord
	byText  map[string]types.CandidateRecord
	errs    map[string]error
	err     error
	delay   time.Duration
	block   bool
	started chan struct{}

	calls []string
}

// NewMockExtractor 创建新的 MockExtractor
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{
		byText:  make(map[string]types.CandidateRecord),
		errs:    make(map[string]error),
		started: make(chan struct{}, 64),
	}
}

// WithResult 设置默认抽取结果
func (m *MockExtractor) WithResult(c types.CandidateRecord) *MockExtractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = c
	return m
}

// WithRow 输入文本包含 marker 时返回 c
func (m *MockExtractor) WithRow(marker string, c types.CandidateRecord) *MockExtractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byText[marker] = c
	return m
}

// WithRowError 输入文本包含 marker 时返回 err
func (m *MockExtractor) WithRowError(marker string, err error) *MockExtractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[marker] = err
	return m
}

// WithError 所有调用都返回 err
func (m *MockExtractor) WithError(err error) *MockExtractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay 每次调用前等待 d，ctx 取消时提前返回
func (m *MockExtractor) WithDelay(d time.Duration) *MockExtractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithBlock 调用一直阻塞到 ctx 结束
func (m *MockExtractor) WithBlock() *MockExtractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = true
	return m
}

// Started 每次调用开始时收到一个信号
func (m *MockExtractor) Started() <-chan struct{} { return m.started }

// Extract 实现 extraction.Extractor
func (m *MockExtractor) Extract(ctx context.Context, text string) (types.CandidateRecord, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	delay, block, err := m.delay, m.block, m.err
	result := m.result
	for marker, c := range m.byText {
		if strings.Contains(text, marker) {
			result = c
		}
	}
	for marker, e := range m.errs {
		if strings.Contains(text, marker) {
			err = e
		}
	}
	m.mu.Unlock()

	select {
	case m.started <- struct{}{}:
	default:
	}

	if block {
		<-ctx.Done()
		return types.CandidateRecord{}, ctx.Err()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return types.CandidateRecord{}, ctx.Err()
		}
	}
	if err != nil {
		return types.CandidateRecord{}, err
	}
	return result, nil
}

// GetCalls 返回收到的输入文本
func (m *MockExtractor) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// GetCallCount 返回调用次数
func (m *MockExtractor) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Candidate 便捷构造候选记录
func Candidate(name, phone, designation, salary string) types.CandidateRecord {
	var c types.CandidateRecord
	if name != "" {
		c.Name = types.StringPtr(name)
	}
	if phone != "" {
		c.Phone = types.StringPtr(phone)
	}
	if designation != "" {
		c.Designation = types.StringPtr(designation)
	}
	if salary != "" {
		c.Salary = types.StringPtr(salary)
	}
	return c
}
