// Package ring delegates routing to a go-redis Ring. Single-key commands run on
// the Ring itself, which picks the shard; fan-out uses the Ring's live shards.
// Shards the Ring's heartbeat has marked down are skipped by Conns, so a pattern
// delete during an outage leaves their keys in place.
package ring

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/autocache/router"
)

var ErrNilRing = errors.New("ring router: nil ring")

type Config struct {
	Ring *redis.Ring
	// CloseRing is set only if the router exclusively owns the ring.
	CloseRing bool
}

type Router struct {
	ring      *redis.Ring
	closeRing bool
}

var _ router.Router = (*Router)(nil)

func New(cfg Config) (*Router, error) {
	if cfg.Ring == nil {
		return nil, ErrNilRing
	}
	return &Router{ring: cfg.Ring, closeRing: cfg.CloseRing}, nil
}

// ringConn lets the Ring route each command; closing it must not close the Ring.
type ringConn struct {
	*redis.Ring
}

func (ringConn) Name() string { return "ring" }
func (ringConn) Close() error { return nil }

func (r *Router) Conn(_ context.Context, _ string) (router.Conn, error) {
	return ringConn{r.ring}, nil
}

func (r *Router) Conns(ctx context.Context) ([]router.Conn, error) {
	var (
		mu      sync.Mutex
		clients []*redis.Client
	)
	err := r.ring.ForEachShard(ctx, func(_ context.Context, c *redis.Client) error {
		mu.Lock()
		clients = append(clients, c)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].Options().Addr < clients[j].Options().Addr
	})
	out := make([]router.Conn, 0, len(clients))
	for _, c := range clients {
		out = append(out, router.Checkout(c.Options().Addr, c))
	}
	return out, nil
}

func (r *Router) Close() error {
	if r.closeRing {
		if err := r.ring.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
	}
	return nil
}
