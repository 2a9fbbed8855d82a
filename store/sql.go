package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BaSui01/onboardflow/internal/database"
	"github.com/BaSui01/onboardflow/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// employeeRow employees 表的 gorm 模型，表结构由 internal/migration 维护
type employeeRow struct {
	ID          uint      `gorm:"primaryKey"`
	UniqueKey   string    `gorm:"column:unique_key"`
	Name        string    `gorm:"column:name"`
	Phone       string    `gorm:"column:phone"`
	Designation string    `gorm:"column:designation"`
	Salary      float64   `gorm:"column:salary"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (employeeRow) TableName() string { return "employees" }

func (r employeeRow) record() types.EmployeeRecord {
	return types.EmployeeRecord{
		Name:        r.Name,
		Phone:       r.Phone,
		Designation: r.Designation,
		Salary:      r.Salary,
		CreatedAt:   r.CreatedAt,
	}
}

// SQLStore 基于 gorm 的记录存储。唯一索引 idx_employees_unique_key 保证
// 并发提交同一个键时只有一条写入成功。
type SQLStore struct {
	pool       *database.PoolManager
	maxRetries int
	logger     *zap.Logger
}

// NewSQLStore 使用已经完成迁移的连接池创建存储
func NewSQLStore(pool *database.PoolManager, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{
		pool:       pool,
		maxRetries: 3,
		logger:     logger.With(zap.String("component", "sql_store"), zap.String("dialect", pool.Dialect())),
	}
}

func (s *SQLStore) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := s.pool.DB().WithContext(ctx).
		Model(&employeeRow{}).
		Where("unique_key = ?", key).
		Count(&n).Error
	if err != nil {
		return false, unavailable(BackendSQL, "exists", err)
	}
	return n > 0, nil
}

func (s *SQLStore) Append(ctx context.Context, key string, rec types.EmployeeRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := employeeRow{
		UniqueKey:   key,
		Name:        rec.Name,
		Phone:       rec.Phone,
		Designation: rec.Designation,
		Salary:      rec.Salary,
		CreatedAt:   createdAt,
	}

	err := s.pool.WithTransactionRetry(ctx, s.maxRetries, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	switch {
	case err == nil:
		s.logger.Debug("record appended", zap.Uint("id", row.ID))
		return nil
	case isUniqueViolation(err):
		return duplicate(BackendSQL, key)
	default:
		return unavailable(BackendSQL, "append", err)
	}
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]types.EmployeeRecord, error) {
	var rows []employeeRow
	q := s.pool.DB().WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, unavailable(BackendSQL, "list", err)
	}

	out := make([]types.EmployeeRecord, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	reverse(out)
	return out, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return unavailable(BackendSQL, "ping", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.pool.Close()
}

// isUniqueViolation 识别唯一约束冲突。postgres 与 mysql 由 gorm 的 TranslateError
// 转换为 gorm.ErrDuplicatedKey；modernc sqlite 的错误需按扩展错误码判断。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// 未开启扩展错误码时只能看消息
			return strings.Contains(se.Error(), "UNIQUE")
		}
	}
	return false
}
