package extraction

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/onboardflow/types"
)

// RowResult 单行抽取结果，Err 为 nil 时 Candidate 有效
type RowResult struct {
	Row       Row
	Candidate types.CandidateRecord
	Err       error
}

// ExtractRows 并发抽取多行，结果顺序与输入一致。
// 单行失败不影响其他行；ctx 取消时未开始的行直接记为 Cancelled。
func ExtractRows(ctx context.Context, ex Extractor, rows []Row, concurrency int) []RowResult {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]RowResult, len(rows))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, row := range rows {
		results[i].Row = row
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = AsError(err)
				return nil
			}
			results[i].Candidate, results[i].Err = ex.Extract(ctx, row.Text)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// LimitRows 只保留前 max 行，返回被丢弃的行数。max <= 0 表示不限制。
func LimitRows(rows []Row, max int) ([]Row, int) {
	if max <= 0 || len(rows) <= max {
		return rows, 0
	}
	return rows[:max], len(rows) - max
}

// ExtractFile 读取上传文件并逐行抽取，最多处理 maxRows 行；
// skipped 为超出上限未处理的行数。
func ExtractFile(ctx context.Context, ex Extractor, name string, data []byte, concurrency, maxRows int) (results []RowResult, skipped int, err error) {
	rows, err := ReadRows(name, data)
	if err != nil {
		return nil, 0, err
	}
	rows, skipped = LimitRows(rows, maxRows)
	return ExtractRows(ctx, ex, rows, concurrency), skipped, nil
}
