// Package router defines how autocache reaches shards.
//
// A Router hands out Conns: one checked-out connection to one shard. Callers
// own a Conn until they Close it and must not share it between goroutines.
// Routing must be consistent: for an unchanged topology, Conn(ctx, k) always
// reaches the same shard for the same k, and Conns returns one Conn per shard.
package router

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Commands is the subset of the Redis protocol autocache issues against a shard.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	redis.Scripter
}

// Conn is a checked-out connection. Close returns it to its pool.
type Conn interface {
	Commands
	// Name identifies the shard in logs and hooks.
	Name() string
	Close() error
}

type Router interface {
	// Conn checks out a connection to the shard owning key.
	Conn(ctx context.Context, key string) (Conn, error)
	// Conns checks out one connection per shard, in a stable order.
	Conns(ctx context.Context) ([]Conn, error)
	// Close releases clients the router owns.
	Close() error
}

type clientConn struct {
	*redis.Conn
	name string
}

func (c *clientConn) Name() string { return c.name }

// Checkout takes a dedicated connection from the client's pool.
// The connection is dialed lazily by the first command.
func Checkout(name string, c *redis.Client) Conn {
	return &clientConn{Conn: c.Conn(), name: name}
}
