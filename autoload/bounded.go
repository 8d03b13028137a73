package autoload

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Bounded caps the number of tracked keys. Past MaxEntries, ristretto's
// admission policy decides which keys are kept; a dropped key only looks due.
// Writes are applied asynchronously; call Wait to observe them.
type Bounded struct {
	c   *ristretto.Cache
	now func() time.Time
}

type BoundedConfig struct {
	MaxEntries int64 // required
	// NumCounters defaults to 10x MaxEntries.
	NumCounters int64
}

func NewBounded(cfg BoundedConfig) (*Bounded, error) {
	if cfg.MaxEntries <= 0 {
		return nil, fmt.Errorf("autoload: MaxEntries must be > 0, got %d", cfg.MaxEntries)
	}
	counters := cfg.NumCounters
	if counters <= 0 {
		counters = cfg.MaxEntries * 10
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: counters,
		MaxCost:     cfg.MaxEntries,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &Bounded{c: c, now: time.Now}, nil
}

func (b *Bounded) Touch(_ context.Context, k string, at time.Time, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	b.c.SetWithTTL(k, entry{LastLoad: at, Expires: expiry(b.now(), ttl)}, 1, ttl)
}

func (b *Bounded) get(k string) (entry, bool) {
	v, ok := b.c.Get(k)
	if !ok {
		return entry{}, false
	}
	e, ok := v.(entry)
	if !ok || e.expired(b.now()) {
		return entry{}, false
	}
	return e, true
}

func (b *Bounded) LastLoad(_ context.Context, k string) (time.Time, bool) {
	e, ok := b.get(k)
	if !ok {
		return time.Time{}, false
	}
	return e.LastLoad, true
}

// Reset rewrites a known entry with a zero last-load time for its remaining TTL.
func (b *Bounded) Reset(_ context.Context, k string) {
	e, ok := b.get(k)
	if !ok {
		return
	}
	var ttl time.Duration
	if !e.Expires.IsZero() {
		ttl = e.Expires.Sub(b.now())
		if ttl <= 0 {
			return
		}
	}
	b.c.SetWithTTL(k, entry{Expires: e.Expires}, 1, ttl)
}

// Len is approximate: admitted keys minus evicted keys.
func (b *Bounded) Len(context.Context) int {
	m := b.c.Metrics
	if m == nil {
		return 0
	}
	n := int64(m.KeysAdded()) - int64(m.KeysEvicted())
	if n < 0 {
		return 0
	}
	return int(n)
}

// Wait blocks until buffered writes are applied.
func (b *Bounded) Wait() { b.c.Wait() }

func (b *Bounded) Close(context.Context) error {
	b.c.Close()
	return nil
}
