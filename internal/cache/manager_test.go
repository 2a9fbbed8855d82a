package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 Manager 测试
// =============================================================================

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Manager) {
	t.Helper()
	mr := miniredis.RunT(t)

	manager, err := NewManager(Config{
		Addr:       mr.Addr(),
		KeyPrefix:  "test:",
		DefaultTTL: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	return mr, manager
}

func TestManager_SetAndGet(t *testing.T) {
	mr, manager := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "k", "v", 0))

	value, err := manager.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	// 键带有前缀，默认 TTL 生效
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))
}

func TestManager_GetMissing(t *testing.T) {
	_, manager := setupTestRedis(t)

	value, err := manager.Get(context.Background(), "missing")
	assert.True(t, IsCacheMiss(err))
	assert.Empty(t, value)
}

func TestManager_Delete(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, manager.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, manager.Delete(ctx, "a", "b"))
	require.NoError(t, manager.Delete(ctx))

	_, err := manager.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestManager_JSON(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	require.NoError(t, manager.SetJSON(ctx, "json", payload{Name: "x", Value: 7}, time.Minute))

	var got payload
	require.NoError(t, manager.GetJSON(ctx, "json", &got))
	assert.Equal(t, payload{Name: "x", Value: 7}, got)

	assert.Error(t, manager.SetJSON(ctx, "bad", make(chan int), time.Minute))

	require.NoError(t, manager.Set(ctx, "not-json", "{", time.Minute))
	assert.Error(t, manager.GetJSON(ctx, "not-json", &got))
}

func TestManager_TTLExpiry(t *testing.T) {
	mr, manager := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "ttl", "value", 100*time.Millisecond))
	mr.FastForward(200 * time.Millisecond)

	_, err := manager.Get(ctx, "ttl")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestManager_ConnectFailure(t *testing.T) {
	manager, err := NewManager(Config{Addr: "127.0.0.1:1"}, zap.NewNop())
	assert.Nil(t, manager)
	assert.Error(t, err)
}

func TestManager_ClosedRejectsCalls(t *testing.T) {
	_, manager := setupTestRedis(t)
	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())

	ctx := context.Background()
	assert.ErrorIs(t, manager.Set(ctx, "k", "v", 0), ErrClosed)
	_, err := manager.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, manager.Ping(ctx), ErrClosed)
}

func TestManager_SharedClientNotClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	manager := NewManagerFromClient(client, Config{KeyPrefix: "p:"}, nil)
	require.NoError(t, manager.Set(context.Background(), "k", "v", time.Minute))
	require.NoError(t, manager.Close())

	// 共享连接仍可使用
	val, err := client.Get(context.Background(), "p:k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestManager_ConcurrentOperations(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("concurrent-%d", id)
			assert.NoError(t, manager.Set(ctx, key, "value", time.Minute))
			value, err := manager.Get(ctx, key)
			assert.NoError(t, err)
			assert.Equal(t, "value", value)
		}(i)
	}
	wg.Wait()
}
