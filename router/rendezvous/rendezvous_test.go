package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newShards(t *testing.T, n int) (map[string]*miniredis.Miniredis, map[string]*redis.Client) {
	t.Helper()
	servers := make(map[string]*miniredis.Miniredis, n)
	addrs := make(map[string]string, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("shard-%d", i)
		s := miniredis.RunT(t)
		servers[name] = s
		addrs[name] = s.Addr()
	}
	clients := Clients(addrs, redis.Options{MaxRetries: -1})
	t.Cleanup(func() {
		for _, c := range clients {
			_ = c.Close()
		}
	})
	return servers, clients
}

func TestNewRejectsEmptyAndNil(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNoShards) {
		t.Fatalf("want ErrNoShards, got %v", err)
	}
	if _, err := New(Config{Shards: map[string]*redis.Client{"a": nil}}); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestConnReachesOwningShard(t *testing.T) {
	ctx := context.Background()
	servers, clients := newShards(t, 3)
	r, err := New(Config{Shards: clients})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		k := fmt.Sprintf("user:%d", i)
		c, err := r.Conn(ctx, k)
		if err != nil {
			t.Fatal(err)
		}
		if c.Name() != r.ShardFor(k) {
			t.Fatalf("conn name %q != ShardFor %q", c.Name(), r.ShardFor(k))
		}
		if err := c.SetEx(ctx, k, "v", time.Minute).Err(); err != nil {
			t.Fatal(err)
		}
		_ = c.Close()

		for name, s := range servers {
			if got := s.Exists(k); got != (name == r.ShardFor(k)) {
				t.Fatalf("key %s on %s: exists=%v owner=%s", k, name, got, r.ShardFor(k))
			}
		}
	}
}

func TestRoutingIsStableAcrossInstances(t *testing.T) {
	_, clients := newShards(t, 4)
	a, _ := New(Config{Shards: clients})
	b, _ := New(Config{Shards: clients})
	used := map[string]bool{}
	for i := 0; i < 200; i++ {
		k := fmt.Sprintf("order:%d", i)
		if a.ShardFor(k) != b.ShardFor(k) {
			t.Fatalf("routing differs for %s", k)
		}
		used[a.ShardFor(k)] = true
	}
	if len(used) < 2 {
		t.Fatalf("200 keys landed on %d shard(s); hashing looks broken", len(used))
	}
}

func TestHashesFullKeyIgnoringHashTags(t *testing.T) {
	_, clients := newShards(t, 3)
	r, _ := New(Config{Shards: clients})
	used := map[string]bool{}
	for i := 0; i < 100; i++ {
		used[r.ShardFor(fmt.Sprintf("{user}:%d", i))] = true
	}
	if len(used) < 2 {
		t.Fatalf("keys sharing a {tag} all landed on one shard; tag extraction is not expected")
	}
}

func TestConnsCoversEveryShardInOrder(t *testing.T) {
	ctx := context.Background()
	_, clients := newShards(t, 3)
	r, _ := New(Config{Shards: clients})

	conns, err := r.Conns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := r.Shards()
	if len(conns) != len(want) {
		t.Fatalf("got %d conns want %d", len(conns), len(want))
	}
	for i, c := range conns {
		if c.Name() != want[i] {
			t.Fatalf("conn %d = %s want %s", i, c.Name(), want[i])
		}
		if err := c.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestCloseOnlyWhenOwned(t *testing.T) {
	ctx := context.Background()
	_, clients := newShards(t, 2)

	shared, _ := New(Config{Shards: clients})
	if err := shared.Close(); err != nil {
		t.Fatal(err)
	}
	for _, c := range clients {
		if err := c.Ping(ctx).Err(); err != nil {
			t.Fatalf("non-owning router closed a client: %v", err)
		}
	}

	owned, _ := New(Config{Shards: clients, CloseClients: true})
	if err := owned.Close(); err != nil {
		t.Fatal(err)
	}
	if err := owned.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	for _, c := range clients {
		if err := c.Ping(ctx).Err(); err == nil {
			t.Fatalf("owning router left a client open")
		}
	}
}
