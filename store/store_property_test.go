package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/BaSui01/onboardflow/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// 任意提交序列下，每个键恰好写入一次，其余提交都得到 DuplicateKey
func TestProperty_AppendNeverDuplicates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	keyGen := gen.IntRange(1, 4).Map(func(i int) string {
		return fmt.Sprintf("555000000%d", i)
	})

	check := func(s RecordStore, keys []string) bool {
		ctx := context.Background()
		seen := make(map[string]bool)
		for _, k := range keys {
			err := s.Append(ctx, k, employee("E", k))
			if seen[k] {
				if !IsDuplicate(err) {
					t.Logf("expected duplicate for %s, got %v", k, err)
					return false
				}
				continue
			}
			if err != nil {
				t.Logf("append %s failed: %v", k, err)
				return false
			}
			seen[k] = true
		}
		recs, err := s.List(ctx, 0)
		return err == nil && len(recs) == len(seen)
	}

	properties.Property("memory store keeps keys unique", prop.ForAll(
		func(keys []string) bool {
			return check(NewMemoryStore(), keys)
		},
		gen.SliceOf(keyGen),
	))

	properties.Property("csv store keeps keys unique across reopen", prop.ForAll(
		func(first, second []string) bool {
			path := filepath.Join(t.TempDir(), "employees.csv")
			s, err := NewCSVStore(path, types.KeyPhone, nil)
			if err != nil || !check(s, first) {
				return false
			}

			reopened, err := NewCSVStore(path, types.KeyPhone, nil)
			if err != nil {
				return false
			}
			before, _ := reopened.List(context.Background(), 0)
			seen := make(map[string]bool)
			for _, r := range before {
				seen[r.Phone] = true
			}
			for _, k := range second {
				err := reopened.Append(context.Background(), k, employee("E", k))
				if seen[k] != IsDuplicate(err) {
					return false
				}
				seen[k] = true
			}
			return true
		},
		gen.SliceOf(keyGen),
		gen.SliceOf(keyGen),
	))

	properties.TestingRun(t)
}
