package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/secureproxy/validation-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory cmdable. When down is set every call fails the
// way a dead connection would.
type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
	down bool
}

var errConnRefused = errors.New("dial tcp: connection refused")

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	if f.down {
		return redis.NewStatusResult("", errConnRefused)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.down {
		return redis.NewStringResult("", errConnRefused)
	}
	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.down {
		return redis.NewStatusResult("", errConnRefused)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.down {
		return redis.NewIntResult(0, errConnRefused)
	}
	current, _ := strconv.ParseInt(f.data[key], 10, 64)
	current++
	f.data[key] = strconv.FormatInt(current, 10)
	return redis.NewIntResult(current, nil)
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if f.down {
		return redis.NewBoolResult(false, errConnRefused)
	}
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Keys(ctx context.Context, pattern string) *redis.StringSliceCmd {
	if f.down {
		return redis.NewStringSliceResult(nil, errConnRefused)
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return redis.NewStringSliceResult(keys, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.down {
		return redis.NewIntResult(0, errConnRefused)
	}
	var deleted int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			delete(f.ttls, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func (f *fakeRedis) FlushDB(ctx context.Context) *redis.StatusCmd {
	if f.down {
		return redis.NewStatusResult("", errConnRefused)
	}
	f.data = make(map[string]string)
	f.ttls = make(map[string]time.Duration)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Info(ctx context.Context, section ...string) *redis.StringCmd {
	if f.down {
		return redis.NewStringResult("", errConnRefused)
	}
	return redis.NewStringResult(
		"# Server\r\nredis_version:7.4.0\r\nuptime_in_seconds:120\r\n"+
			"# Clients\r\nconnected_clients:2\r\n"+
			"# Memory\r\nused_memory_human:1.05M\r\n", nil)
}

func (f *fakeRedis) Time(ctx context.Context) *redis.TimeCmd {
	if f.down {
		return redis.NewTimeCmdResult(time.Time{}, errConnRefused)
	}
	return redis.NewTimeCmdResult(time.Unix(1700000000, 0), nil)
}

func newTestStore(t *testing.T, client cmdable) *Store {
	t.Helper()
	logger := zerolog.Nop()
	store := NewStore(client, DefaultTTLConfig(), 3*time.Second, &logger)
	return store
}

func TestKey(t *testing.T) {
	content := []byte("'; DROP TABLE users; --")

	key1 := Key(content, models.KindText, models.LevelHigh)
	key2 := Key(content, models.KindText, models.LevelHigh)
	assert.Equal(t, key1, key2, "identical triples must map to identical keys")

	assert.True(t, strings.HasPrefix(key1, "validation:text:high:"))
	assert.Len(t, strings.TrimPrefix(key1, "validation:text:high:"), 64)

	assert.NotEqual(t, key1, Key([]byte("other content"), models.KindText, models.LevelHigh))
	assert.NotEqual(t, key1, Key(content, models.KindFile, models.LevelHigh))
	assert.NotEqual(t, key1, Key(content, models.KindText, models.LevelMedium))
}

func TestStore_PutAndGet(t *testing.T) {
	fake := newFakeRedis()
	store := newTestStore(t, fake)
	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))

	key := Key([]byte("hello"), models.KindText, models.LevelMedium)

	_, hit := store.Get(ctx, key)
	assert.False(t, hit, "empty store must miss")

	result := models.VerdictResult{
		Status:        models.StatusSafe,
		Reason:        "safe",
		RuleScore:     0.0,
		OverallScore:  1.0,
		SecurityLevel: models.LevelMedium,
	}
	require.True(t, store.Put(ctx, key, result, models.KindText))

	cached, hit := store.Get(ctx, key)
	require.True(t, hit)
	assert.Equal(t, models.StatusSafe, cached.Status)
	assert.Equal(t, "safe", cached.Reason)
	assert.Equal(t, models.KindText, cached.Kind, "kind is stored for provenance")
	assert.Equal(t, int64(1700000000), cached.CachedAt, "cached_at uses store-side time")
	assert.Equal(t, 30*time.Minute, fake.ttls[key], "text entries use the text TTL")
}

func TestStore_TTLPerKind(t *testing.T) {
	store := newTestStore(t, newFakeRedis())

	assert.Equal(t, 30*time.Minute, store.TTLFor(models.KindText))
	assert.Equal(t, 2*time.Hour, store.TTLFor(models.KindFile))
	assert.Equal(t, time.Hour, store.TTLFor(models.ContentKind("unknown")))
}

func TestStore_Counters(t *testing.T) {
	fake := newFakeRedis()
	store := newTestStore(t, fake)
	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))

	assert.Equal(t, int64(0), store.GetCounter(ctx, "cache_hits"), "absent counter reads as zero")

	value, ok := store.IncrementCounter(ctx, "cache_hits")
	require.True(t, ok)
	assert.Equal(t, int64(1), value)

	value, ok = store.IncrementCounter(ctx, "cache_hits")
	require.True(t, ok)
	assert.Equal(t, int64(2), value)

	assert.Equal(t, int64(2), store.GetCounter(ctx, "cache_hits"))
	assert.Equal(t, 24*time.Hour, fake.ttls["counter:cache_hits"], "increment re-arms the daily expiry")
}

func TestStore_Clear(t *testing.T) {
	fake := newFakeRedis()
	store := newTestStore(t, fake)
	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))

	store.Put(ctx, Key([]byte("a"), models.KindText, models.LevelLow), models.VerdictResult{}, models.KindText)
	store.Put(ctx, Key([]byte("b"), models.KindFile, models.LevelLow), models.VerdictResult{}, models.KindFile)
	store.IncrementCounter(ctx, "cache_misses")

	require.NoError(t, store.Clear(ctx, "validation:*"))
	assert.Len(t, fake.data, 1, "counters survive a validation-pattern clear")

	require.NoError(t, store.Clear(ctx, ""))
	assert.Empty(t, fake.data)
}

func TestStore_GetInfo(t *testing.T) {
	fake := newFakeRedis()
	store := newTestStore(t, fake)
	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))

	store.Put(ctx, Key([]byte("a"), models.KindText, models.LevelLow), models.VerdictResult{}, models.KindText)
	store.IncrementCounter(ctx, "cache_misses")

	info := store.GetInfo(ctx)
	assert.True(t, info.Connected)
	assert.Equal(t, "7.4.0", info.RedisVersion)
	assert.Equal(t, "1.05M", info.UsedMemory)
	assert.Equal(t, int64(120), info.UptimeSeconds)
	assert.Equal(t, 1, info.ValidationKeys)
	assert.Equal(t, 1, info.CounterKeys)
}

func TestStore_UnavailableDegradesToMiss(t *testing.T) {
	fake := newFakeRedis()
	fake.down = true
	store := newTestStore(t, fake)
	ctx := context.Background()

	assert.ErrorIs(t, store.Connect(ctx), ErrUnavailable)
	assert.False(t, store.Connected())

	_, hit := store.Get(ctx, "validation:text:low:abc")
	assert.False(t, hit, "outage must read as a miss")

	assert.False(t, store.Put(ctx, "k", models.VerdictResult{}, models.KindText))

	_, ok := store.IncrementCounter(ctx, "cache_hits")
	assert.False(t, ok)

	assert.ErrorIs(t, store.Clear(ctx, ""), ErrUnavailable)
	assert.False(t, store.GetInfo(ctx).Connected)
}

func TestStore_LazyReconnect(t *testing.T) {
	fake := newFakeRedis()
	fake.down = true
	store := newTestStore(t, fake)
	ctx := context.Background()

	_ = store.Connect(ctx)
	assert.False(t, store.Connected())

	// Store comes back; the next use reconnects without any crash loop.
	fake.down = false
	key := Key([]byte("x"), models.KindText, models.LevelLow)
	assert.True(t, store.Put(ctx, key, models.VerdictResult{Status: models.StatusSafe}, models.KindText))
	assert.True(t, store.Connected())

	_, hit := store.Get(ctx, key)
	assert.True(t, hit)
}

func TestStore_CorruptEntryIsMiss(t *testing.T) {
	fake := newFakeRedis()
	store := newTestStore(t, fake)
	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))

	fake.data["validation:text:low:deadbeef"] = "{not json"
	_, hit := store.Get(ctx, "validation:text:low:deadbeef")
	assert.False(t, hit)
}
