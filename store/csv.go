package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BaSui01/onboardflow/types"
	"go.uber.org/zap"
)

// CSVHeader 表格文件的表头，列顺序固定
var CSVHeader = []string{"Name", "Phone", "Designation", "Salary"}

// CSVStore 单文件表格存储，适合单节点部署。
// 文件只追加不改写；启动时读取已有行重建唯一键索引。
type CSVStore struct {
	path    string
	keyOf   types.UniquenessKey
	logger  *zap.Logger
	mu      sync.RWMutex
	keys    map[string]struct{}
	records []types.EmployeeRecord
	closed  bool
}

// NewCSVStore 打开或创建表格文件
func NewCSVStore(path string, keyOf types.UniquenessKey, logger *zap.Logger) (*CSVStore, error) {
	if path == "" {
		return nil, fmt.Errorf("csv path is required")
	}
	if !keyOf.Valid() {
		return nil, fmt.Errorf("unsupported uniqueness key %q", keyOf)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create csv directory: %w", err)
		}
	}

	s := &CSVStore{
		path:   path,
		keyOf:  keyOf,
		logger: logger.With(zap.String("component", "csv_store")),
		keys:   make(map[string]struct{}),
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return s, nil
}

// load 读取已有记录；文件不存在或为空时写入表头
func (s *CSVStore) load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.writeRows([][]string{CSVHeader})
	}
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return s.writeRows([][]string{CSVHeader})
	}
	if err != nil {
		return err
	}
	if !sameHeader(header) {
		return fmt.Errorf("unexpected header %v", header)
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		rec, err := parseCSVRow(row)
		if err != nil {
			s.logger.Warn("skipping malformed row", zap.Int("line", line), zap.Error(err))
			continue
		}
		s.keys[s.keyOf.Of(rec)] = struct{}{}
		s.records = append(s.records, rec)
	}

	s.logger.Debug("csv store loaded", zap.String("path", s.path), zap.Int("records", len(s.records)))
	return nil
}

func sameHeader(h []string) bool {
	if len(h) < len(CSVHeader) {
		return false
	}
	for i, want := range CSVHeader {
		got := strings.TrimSpace(strings.TrimPrefix(h[i], "\ufeff"))
		if !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

func parseCSVRow(row []string) (types.EmployeeRecord, error) {
	if len(row) < len(CSVHeader) {
		return types.EmployeeRecord{}, fmt.Errorf("expected %d columns, got %d", len(CSVHeader), len(row))
	}
	salary, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return types.EmployeeRecord{}, fmt.Errorf("invalid salary %q", row[3])
	}
	return types.EmployeeRecord{
		Name:        row[0],
		Phone:       row[1],
		Designation: row[2],
		Salary:      salary,
	}, nil
}

func (s *CSVStore) writeRows(rows [][]string) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *CSVStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(BackendCSV, "exists", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, unavailable(BackendCSV, "exists", ErrClosed)
	}
	_, ok := s.keys[key]
	return ok, nil
}

func (s *CSVStore) Append(ctx context.Context, key string, rec types.EmployeeRecord) error {
	if err := ctx.Err(); err != nil {
		return unavailable(BackendCSV, "append", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return unavailable(BackendCSV, "append", ErrClosed)
	}
	if _, ok := s.keys[key]; ok {
		return duplicate(BackendCSV, key)
	}

	row := []string{rec.Name, rec.Phone, rec.Designation, types.FormatSalaryPlain(rec.Salary)}
	if err := s.writeRows([][]string{row}); err != nil {
		return unavailable(BackendCSV, "append", err)
	}
	s.keys[key] = struct{}{}
	s.records = append(s.records, rec)
	return nil
}

func (s *CSVStore) List(ctx context.Context, limit int) ([]types.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, unavailable(BackendCSV, "list", ErrClosed)
	}
	return newest(s.records, limit), nil
}

// Ping 检查文件仍然可写
func (s *CSVStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return unavailable(BackendCSV, "ping", ErrClosed)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return unavailable(BackendCSV, "ping", err)
	}
	return f.Close()
}

func (s *CSVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
