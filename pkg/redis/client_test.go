package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/studiosite/studiosite-backend/pkg/config"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:abc", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first request allowed with count 1, got allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}
	if mock.expireCalls[0].key != "ss:rate_limit:login:ip:abc" {
		t.Fatalf("unexpected expire key %s", mock.expireCalls[0].key)
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:abc", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "login:ip:abc", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestIncrWithTTLPropagatesErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.incrErr = errors.New("connection reset")
	client := &Client{store: mock}

	if _, err := client.IncrWithTTL(context.Background(), "k", time.Minute); err == nil {
		t.Fatalf("expected incr error to propagate")
	}
}

func TestSetNXClaimsOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if _, err := client.Get(ctx, "k"); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil for a missing key, got %v", err)
	}
	ok, err := client.SetNX(ctx, "k", "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, got ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "second", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, got ok=%v err=%v", ok, err)
	}
	if err := client.Set(ctx, "k", "final", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := client.Get(ctx, "k"); got != "final" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected errNotInitialized, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.RateLimitKey("scope"); got != "ss:rate_limit:scope" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.IdempotencyKey("uid-1|POST|/api/products", "abc"); got != "ss:idempotency:uid-1|POST|/api/products:abc" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.buildKey("a", "", " b "); got != "ss:a:b" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected missing url to fail")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	incr        map[string]int64
	incrErr     error
	expireCalls []expireCall
	values      map[string]string
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{incr: make(map[string]int64), values: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	if m.incrErr != nil {
		return redis.NewIntResult(0, m.incrErr)
	}
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.incr, key)
		delete(m.values, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, ok := m.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}
