package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BaSui01/onboardflow/types"
	"github.com/redis/go-redis/v9"
)

// appendScript 原子地占用唯一键并追加记录。
// KEYS[1] 唯一键，KEYS[2] 记录列表；ARGV[1] 记录 JSON。返回 1 表示写入，0 表示重复。
var appendScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], '1') == 0 then
	return 0
end
redis.call('RPUSH', KEYS[2], ARGV[1])
return 1
`)

// RedisStore 基于 Redis 的记录存储，适合多实例部署。
// 唯一键存为字符串键，记录按写入顺序存于一个列表。
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	owned     bool
}

// NewRedisStore 使用共享客户端创建存储，Close 不会关闭该客户端
func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "onboardflow:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix + "employee:"}
}

// NewRedisStoreFromOptions 创建独占客户端的存储并检查连接
func NewRedisStoreFromOptions(ctx context.Context, opts *redis.Options, keyPrefix string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s := NewRedisStore(client, keyPrefix)
	s.owned = true
	return s, nil
}

func (s *RedisStore) uniqueKey(key string) string { return s.keyPrefix + "key:" + key }

func (s *RedisStore) listKey() string { return s.keyPrefix + "records" }

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.uniqueKey(key)).Result()
	if err != nil {
		return false, unavailable(BackendRedis, "exists", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Append(ctx context.Context, key string, rec types.EmployeeRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return unavailable(BackendRedis, "append", fmt.Errorf("failed to marshal record: %w", err))
	}

	written, err := appendScript.Run(ctx, s.client, []string{s.uniqueKey(key), s.listKey()}, data).Int()
	if err != nil {
		return unavailable(BackendRedis, "append", err)
	}
	if written == 0 {
		return duplicate(BackendRedis, key)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]types.EmployeeRecord, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	items, err := s.client.LRange(ctx, s.listKey(), start, -1).Result()
	if err != nil {
		return nil, unavailable(BackendRedis, "list", err)
	}

	out := make([]types.EmployeeRecord, 0, len(items))
	for _, item := range items {
		var rec types.EmployeeRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, unavailable(BackendRedis, "list", fmt.Errorf("corrupt record: %w", err))
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(BackendRedis, "ping", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}
