package autoload

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(rdb, RedisOptions{Namespace: "app", CloseClient: true})
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return mr, s
}

func TestRedisTouchStoresNanos(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestRedis(t)

	at := time.Unix(1700000000, 123)
	s.Touch(ctx, "user:1", at, time.Minute)

	v, err := mr.Get("autoload:app:user:1")
	if err != nil {
		t.Fatal(err)
	}
	if v != "1700000000000000123" {
		t.Fatalf("stored %q", v)
	}
	if ttl := mr.TTL("autoload:app:user:1"); ttl != time.Minute {
		t.Fatalf("ttl=%v", ttl)
	}
	got, ok := s.LastLoad(ctx, "user:1")
	if !ok || !got.Equal(at) {
		t.Fatalf("LastLoad=%v,%v", got, ok)
	}
}

func TestRedisResetKeepsTTLAndIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestRedis(t)

	s.Touch(ctx, "k", time.Now(), time.Minute)
	s.Reset(ctx, "k")
	s.Reset(ctx, "unknown")

	got, ok := s.LastLoad(ctx, "k")
	if !ok || !got.IsZero() {
		t.Fatalf("after Reset: %v,%v", got, ok)
	}
	if ttl := mr.TTL("autoload:app:k"); ttl != time.Minute {
		t.Fatalf("Reset dropped the ttl: %v", ttl)
	}
	if mr.Exists("autoload:app:unknown") {
		t.Fatalf("Reset created an unknown key")
	}
	if n := s.Len(ctx); n != 1 {
		t.Fatalf("Len=%d", n)
	}
}

func TestRedisExpiredEntryIsUnknown(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestRedis(t)

	s.Touch(ctx, "k", time.Now(), time.Second)
	mr.FastForward(2 * time.Second)
	if _, ok := s.LastLoad(ctx, "k"); ok {
		t.Fatalf("expired entry still known")
	}
}

func TestRedisFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestRedis(t)
	mr.Close()

	s.Touch(ctx, "k", time.Now(), time.Minute)
	s.Reset(ctx, "k")
	if _, ok := s.LastLoad(ctx, "k"); ok {
		t.Fatalf("dead registry reported a known key")
	}
	if n := s.Len(ctx); n != 0 {
		t.Fatalf("Len=%d", n)
	}
}
