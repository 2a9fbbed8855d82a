package store

import (
	"context"
	"sync"

	"github.com/BaSui01/onboardflow/types"
)

// MemoryStore 内存实现，进程退出后数据丢失
type MemoryStore struct {
	mu      sync.RWMutex
	keys    map[string]struct{}
	records []types.EmployeeRecord
	closed  bool
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]struct{})}
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(BackendMemory, "exists", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, unavailable(BackendMemory, "exists", ErrClosed)
	}
	_, ok := s.keys[key]
	return ok, nil
}

func (s *MemoryStore) Append(ctx context.Context, key string, rec types.EmployeeRecord) error {
	if err := ctx.Err(); err != nil {
		return unavailable(BackendMemory, "append", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return unavailable(BackendMemory, "append", ErrClosed)
	}
	if _, ok := s.keys[key]; ok {
		return duplicate(BackendMemory, key)
	}
	s.keys[key] = struct{}{}
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]types.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, unavailable(BackendMemory, "list", ErrClosed)
	}
	return newest(s.records, limit), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return unavailable(BackendMemory, "ping", ErrClosed)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
