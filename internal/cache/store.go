package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/secureproxy/validation-gateway/internal/models"
)

// counterTTL gives every counter key a daily rolling reset, re-armed on each
// increment so stale counters self-clear.
const counterTTL = 24 * time.Hour

// ErrUnavailable reports that the store could not be reached. Callers treat
// it as a cache miss; it never fails a validation.
var ErrUnavailable = errors.New("cache store unavailable")

// cmdable is the slice of the go-redis API the store uses. *redis.Client
// satisfies it; tests substitute an in-memory fake.
type cmdable interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	FlushDB(ctx context.Context) *redis.StatusCmd
	Info(ctx context.Context, section ...string) *redis.StringCmd
	Time(ctx context.Context) *redis.TimeCmd
}

// TTLConfig carries the per-kind TTLs for cached verdicts.
type TTLConfig struct {
	Text    time.Duration
	File    time.Duration
	Default time.Duration
}

func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Text:    30 * time.Minute,
		File:    2 * time.Hour,
		Default: time.Hour,
	}
}

// Store is a content-addressed verdict cache plus counters on Redis. It is
// an optional accelerator: when the store is unreachable every get is a miss
// and every put or increment is a silent no-op, with a lazy reconnect probe
// on the next use instead of a retry storm.
type Store struct {
	client    cmdable
	ttls      TTLConfig
	opTimeout time.Duration
	connected atomic.Bool
	logger    *zerolog.Logger
}

func NewStore(client cmdable, ttls TTLConfig, opTimeout time.Duration, logger *zerolog.Logger) *Store {
	return &Store{
		client:    client,
		ttls:      ttls,
		opTimeout: opTimeout,
		logger:    logger,
	}
}

// NewClient builds the Redis client with bounded per-call timeouts, so a
// hung store degrades to unavailable instead of stalling requests.
func NewClient(addr string, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              0,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})
}

// Connect probes the store once. Failure is not fatal: the store starts
// disconnected and reconnects lazily on the next use.
func (s *Store) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		s.connected.Store(false)
		return errors.Join(ErrUnavailable, err)
	}

	s.connected.Store(true)
	return nil
}

func (s *Store) Connected() bool {
	return s.connected.Load()
}

// ensure reconnects lazily when the last operation marked the store down.
func (s *Store) ensure(ctx context.Context) bool {
	if s.connected.Load() {
		return true
	}

	if err := s.Connect(ctx); err != nil {
		return false
	}

	s.logger.Info().Msg("cache store reconnected")
	return true
}

func (s *Store) markDown(err error) {
	if s.connected.Swap(false) {
		s.logger.Warn().Err(err).Msg("cache store unavailable, degrading to miss")
	}
}

// TTLFor returns the verdict TTL for a content kind.
func (s *Store) TTLFor(kind models.ContentKind) time.Duration {
	switch kind {
	case models.KindText:
		return s.ttls.Text
	case models.KindFile:
		return s.ttls.File
	default:
		return s.ttls.Default
	}
}

// Get returns the cached verdict for key. A store outage is
// indistinguishable from absence: both report a miss.
func (s *Store) Get(ctx context.Context, key string) (*models.VerdictResult, bool) {
	if !s.ensure(ctx) {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.markDown(err)
		return nil, false
	}

	var result models.VerdictResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("corrupt cache entry, treating as miss")
		return nil, false
	}

	return &result, true
}

// Put stores a verdict under key with the kind-appropriate TTL, stamping it
// with the store-side time for provenance. Entries are overwritten
// wholesale, never mutated.
func (s *Store) Put(ctx context.Context, key string, result models.VerdictResult, kind models.ContentKind) bool {
	if !s.ensure(ctx) {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	cachedAt := time.Now()
	if serverTime, err := s.client.Time(ctx).Result(); err == nil {
		cachedAt = serverTime
	}
	result.CachedAt = cachedAt.Unix()
	result.Kind = kind

	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to serialize verdict for cache")
		return false
	}

	if err := s.client.Set(ctx, key, string(data), s.TTLFor(kind)).Err(); err != nil {
		s.markDown(err)
		return false
	}

	return true
}

// IncrementCounter atomically bumps a named counter and re-arms its daily
// expiry. Atomicity is the store's INCR, not application locking.
func (s *Store) IncrementCounter(ctx context.Context, name string) (int64, bool) {
	if !s.ensure(ctx) {
		return 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	key := counterKey(name)
	value, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.markDown(err)
		return 0, false
	}

	if err := s.client.Expire(ctx, key, counterTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("counter", name).Msg("failed to re-arm counter expiry")
	}

	return value, true
}

// GetCounter reads a counter; absent counters and outages both read as 0.
func (s *Store) GetCounter(ctx context.Context, name string) int64 {
	if !s.ensure(ctx) {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, counterKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		s.markDown(err)
		return 0
	}

	value, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// Clear bulk-deletes keys matching pattern, or flushes the whole database
// when pattern is empty.
func (s *Store) Clear(ctx context.Context, pattern string) error {
	if !s.ensure(ctx) {
		return ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if pattern == "" {
		if err := s.client.FlushDB(ctx).Err(); err != nil {
			s.markDown(err)
			return ErrUnavailable
		}
		s.logger.Info().Msg("cleared all cache entries")
		return nil
	}

	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		s.markDown(err)
		return ErrUnavailable
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.markDown(err)
		return ErrUnavailable
	}

	s.logger.Info().Int("count", len(keys)).Str("pattern", pattern).Msg("cleared cache entries")
	return nil
}

// Info is the cache observability surface.
type Info struct {
	Connected        bool   `json:"connected"`
	RedisVersion     string `json:"redis_version,omitempty"`
	UsedMemory       string `json:"used_memory,omitempty"`
	ValidationKeys   int    `json:"validation_cache_keys"`
	CounterKeys      int    `json:"counter_keys"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	ConnectedClients int64  `json:"connected_clients"`
}

// GetInfo reports connectivity, key counts by prefix, memory, and uptime.
func (s *Store) GetInfo(ctx context.Context) Info {
	if !s.ensure(ctx) {
		return Info{Connected: false}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	info := Info{Connected: true}

	if raw, err := s.client.Info(ctx).Result(); err == nil {
		fields := parseInfo(raw)
		info.RedisVersion = fields["redis_version"]
		info.UsedMemory = fields["used_memory_human"]
		info.UptimeSeconds, _ = strconv.ParseInt(fields["uptime_in_seconds"], 10, 64)
		info.ConnectedClients, _ = strconv.ParseInt(fields["connected_clients"], 10, 64)
	} else {
		s.markDown(err)
		return Info{Connected: false}
	}

	if keys, err := s.client.Keys(ctx, "validation:*").Result(); err == nil {
		info.ValidationKeys = len(keys)
	}
	if keys, err := s.client.Keys(ctx, "counter:*").Result(); err == nil {
		info.CounterKeys = len(keys)
	}

	return info
}

func parseInfo(raw string) map[string]string {
	fields := make(map[string]string)
	for line := range strings.Lines(raw) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, value, found := strings.Cut(line, ":"); found {
			fields[key] = value
		}
	}
	return fields
}
