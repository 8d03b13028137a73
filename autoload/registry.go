// Package autoload tracks when each cached key was last loaded from its source.
//
// A background refresher Touches a key after reloading it and reads LastLoad to
// decide what is due. The cache manager only calls Reset, after a delete, so a
// removed key is treated as due instead of fresh.
package autoload

import (
	"context"
	"time"

	"github.com/unkn0wn-root/autocache"
)

// Registry is an autocache.AutoLoadRegistry a refresher can also read and write.
type Registry interface {
	autocache.AutoLoadRegistry

	// Touch records that storageKey was loaded at at. ttl <= 0 keeps the entry
	// until it is evicted or the registry closes.
	Touch(ctx context.Context, storageKey string, at time.Time, ttl time.Duration)
	// LastLoad returns the recorded time; ok=false for unknown or expired keys.
	// A reset key is known and reports the zero time.
	LastLoad(ctx context.Context, storageKey string) (at time.Time, ok bool)
	// Len is the number of tracked keys. Bounded is approximate.
	Len(ctx context.Context) int
	Close(ctx context.Context) error
}

var (
	_ Registry = (*Local)(nil)
	_ Registry = (*Redis)(nil)
	_ Registry = (*Bounded)(nil)
)

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

type entry struct {
	LastLoad time.Time
	Expires  time.Time // zero => no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}
