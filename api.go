package autocache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/autocache/codec"
	"github.com/unkn0wn-root/autocache/router"
)

// Manager is the sharded cache-access API. V is the caller's value type.
// Set, Get and Delete never fail because the cache is unreachable or holds
// garbage; the only error a caller sees is a pattern key passed to Set.
type Manager[V any] interface {
	// Enabled reports whether a Router is configured. A disabled manager is a
	// pass-through: Set and Delete do nothing, Get always misses.
	Enabled() bool
	Close(context.Context) error

	// Set stamps w.LastLoad and stores w under key for ttl (ttl <= 0 => DefaultTTL).
	// Store TTLs have second granularity.
	Set(ctx context.Context, key string, w *Wrapper[V], ttl time.Duration) error
	Get(ctx context.Context, key string) (*Wrapper[V], bool)

	// Delete removes key, or every key matching it on every shard when it
	// contains '*' or '?'. It returns the storage keys actually removed.
	Delete(ctx context.Context, key string) []string

	// DeleteByDefaultKey deletes the key the KeyDeriver builds for a method call.
	// byPrefix deletes every argument variant of the call instead.
	DeleteByDefaultKey(ctx context.Context, typeName, method string, args []any, subKeyExpr string, byPrefix bool) []string
	// DeleteByDefinedKey deletes the key produced by a key expression.
	DeleteByDefinedKey(ctx context.Context, keyExpr string, args []any) []string

	// StorageKey returns the namespaced key used for key.
	StorageKey(key string) string
}

// AutoLoadRegistry is told about every key a Delete touched so that background
// refresh does not trust a last-load time from before the delete.
// Reset must tolerate unknown keys, return promptly, and handle its own failures.
type AutoLoadRegistry interface {
	Reset(ctx context.Context, storageKey string)
}

type NopRegistry struct{}

func (NopRegistry) Reset(context.Context, string) {}

// Options configure a Manager. Everything is optional: without a Router the
// manager is disabled rather than failing.
type Options[V any] struct {
	Namespace string        // prepended as "<ns>:"; must not contain '*' or '?'
	Router    router.Router // nil => disabled

	Codec    c.Codec[V] // nil => codec.JSON
	KeyCodec c.Key      // nil => codec.StringKey

	Registry   AutoLoadRegistry // nil => NopRegistry
	Keys       KeyDeriver       // nil => keygen.New()
	Logger     Logger           // nil => NopLogger
	Hooks      Hooks            // nil => NopHooks
	DefaultTTL time.Duration    // 0 => 10m
	Now        func() time.Time // nil => time.Now
}

func New[V any](opts Options[V]) (Manager[V], error) {
	return newManager[V](opts)
}
