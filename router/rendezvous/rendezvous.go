// Package rendezvous routes keys over a static set of Redis clients using
// rendezvous (highest random weight) hashing with xxhash over the full storage
// key. go-redis Ring uses the same hash but first reduces "{tag}" keys to their
// hash tag, so keys with braces may land on different shards under the two
// routers. Unlike Ring it exposes which shard owns a key and keeps every
// configured shard in Conns, healthy or not, so a pattern delete always
// attempts every shard.
package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	hrw "github.com/dgryski/go-rendezvous"
	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/autocache/router"
)

var ErrNoShards = errors.New("rendezvous router: no shards")

type Config struct {
	// Shards maps a stable shard name to its client. Names feed the hash:
	// renaming a shard moves its keys, re-pointing a name at a new address does not.
	Shards map[string]*redis.Client
	// CloseClients is set only if the router exclusively owns the clients.
	CloseClients bool
}

type Router struct {
	names        []string // sorted
	clients      map[string]*redis.Client
	hash         *hrw.Rendezvous
	closeClients bool
}

var _ router.Router = (*Router)(nil)

func New(cfg Config) (*Router, error) {
	if len(cfg.Shards) == 0 {
		return nil, ErrNoShards
	}
	names := make([]string, 0, len(cfg.Shards))
	clients := make(map[string]*redis.Client, len(cfg.Shards))
	for name, c := range cfg.Shards {
		if c == nil {
			return nil, fmt.Errorf("rendezvous router: nil client for shard %q", name)
		}
		names = append(names, name)
		clients[name] = c
	}
	sort.Strings(names)
	return &Router{
		names:        names,
		clients:      clients,
		hash:         hrw.New(names, xxhash.Sum64String),
		closeClients: cfg.CloseClients,
	}, nil
}

// Clients builds one client per address, sharing every other option with base.
func Clients(addrs map[string]string, base redis.Options) map[string]*redis.Client {
	out := make(map[string]*redis.Client, len(addrs))
	for name, addr := range addrs {
		opt := base
		opt.Addr = addr
		out[name] = redis.NewClient(&opt)
	}
	return out
}

// ShardFor names the shard owning key.
func (r *Router) ShardFor(key string) string { return r.hash.Lookup(key) }

// Shards returns shard names in Conns order.
func (r *Router) Shards() []string { return append([]string(nil), r.names...) }

func (r *Router) Conn(_ context.Context, key string) (router.Conn, error) {
	name := r.hash.Lookup(key)
	return router.Checkout(name, r.clients[name]), nil
}

func (r *Router) Conns(_ context.Context) ([]router.Conn, error) {
	out := make([]router.Conn, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, router.Checkout(name, r.clients[name]))
	}
	return out, nil
}

// Close closes the clients when the router owns them. Safe to call twice.
func (r *Router) Close() error {
	if !r.closeClients {
		return nil
	}
	var errs []error
	for _, name := range r.names {
		if err := r.clients[name].Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, fmt.Errorf("shard %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
