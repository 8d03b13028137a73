package autocache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	c "github.com/unkn0wn-root/autocache/codec"
	"github.com/unkn0wn-root/autocache/internal/util"
	"github.com/unkn0wn-root/autocache/internal/wire"
	"github.com/unkn0wn-root/autocache/keygen"
	"github.com/unkn0wn-root/autocache/router"
)

// purgeScript lists and deletes the keys matching KEYS[1] as one atomic unit on
// a shard and returns the deleted keys. DEL runs in chunks to stay under Lua's
// unpack limit.
var purgeScript = redis.NewScript(`
local keys = redis.call('KEYS', KEYS[1])
if not keys or #keys == 0 then
	return {}
end
for i = 1, #keys, 5000 do
	redis.call('DEL', unpack(keys, i, math.min(i + 4999, #keys)))
end
return keys
`)

type manager[V any] struct {
	ns       string
	router   router.Router
	codec    c.Codec[V]
	keys     c.Key
	registry AutoLoadRegistry
	derive   KeyDeriver
	log      Logger
	hooks    Hooks
	ttl      time.Duration
	now      func() time.Time
}

func newManager[V any](opts Options[V]) (*manager[V], error) {
	if util.HasGlob(opts.Namespace) {
		return nil, fmt.Errorf("autocache: namespace %q contains '*' or '?'", opts.Namespace)
	}

	m := &manager[V]{
		ns:     opts.Namespace,
		router: opts.Router,
		now:    opts.Now,
	}

	// defaults
	m.codec = coalesce[c.Codec[V]](opts.Codec, c.JSON[V]{})
	m.keys = coalesce[c.Key](opts.KeyCodec, c.StringKey{})
	m.registry = coalesce[AutoLoadRegistry](opts.Registry, NopRegistry{})
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	m.ttl = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)
	if m.now == nil {
		m.now = time.Now
	}
	if opts.Keys != nil {
		m.derive = opts.Keys
	} else {
		m.derive = keygen.New()
	}

	if m.router == nil {
		m.log.Info("no router configured; cache disabled", Fields{"ns": m.ns})
	}
	return m, nil
}

func (m *manager[V]) Enabled() bool { return m.router != nil }

func (m *manager[V]) Close(context.Context) error {
	if m.router != nil {
		return m.router.Close()
	}
	return nil
}

func (m *manager[V]) StorageKey(key string) string { return namespaced(m.ns, key) }

func (m *manager[V]) Set(ctx context.Context, key string, w *Wrapper[V], ttl time.Duration) error {
	if m.router == nil || key == "" || w == nil {
		return nil
	}
	k := m.StorageKey(key)
	if util.HasGlob(k) {
		return &KeyError{Key: k}
	}
	if ttl <= 0 {
		ttl = m.ttl
	}

	w.LastLoad = m.now()
	payload, err := m.codec.Encode(w.Value)
	if err != nil {
		m.absorb("set", k, err)
		return nil
	}

	conn, err := m.router.Conn(ctx, k)
	if err != nil {
		m.absorb("set", k, err)
		return nil
	}
	defer m.release(conn)

	if err := conn.SetEx(ctx, m.keys.EncodeKey(k), wire.Encode(w.LastLoad, payload), ttl).Err(); err != nil {
		m.absorb("set", k, err)
	}
	return nil
}

func (m *manager[V]) Get(ctx context.Context, key string) (*Wrapper[V], bool) {
	if m.router == nil || key == "" {
		return nil, false
	}
	k := m.StorageKey(key)
	w, ok := m.get(ctx, k)
	m.hooks.Lookup(k, ok)
	return w, ok
}

func (m *manager[V]) get(ctx context.Context, k string) (*Wrapper[V], bool) {
	raw, ok := m.fetch(ctx, k)
	if !ok {
		return nil, false
	}
	lastLoad, payload, err := wire.Decode(raw)
	if err != nil {
		m.decodeFailed(k, err)
		return nil, false
	}
	v, err := m.codec.Decode(payload)
	if err != nil {
		m.decodeFailed(k, err)
		return nil, false
	}
	return &Wrapper[V]{Value: v, LastLoad: lastLoad}, true
}

// fetch holds the shard connection for the GET only; decoding happens after release.
func (m *manager[V]) fetch(ctx context.Context, k string) ([]byte, bool) {
	conn, err := m.router.Conn(ctx, k)
	if err != nil {
		m.absorb("get", k, err)
		return nil, false
	}
	defer m.release(conn)

	raw, err := conn.Get(ctx, m.keys.EncodeKey(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		m.absorb("get", k, err)
		return nil, false
	}
	return raw, true
}

func (m *manager[V]) Delete(ctx context.Context, key string) []string {
	if m.router == nil || key == "" {
		return nil
	}
	k := m.StorageKey(key)
	if util.HasGlob(k) {
		return m.deletePattern(ctx, k)
	}
	return m.deleteExact(ctx, k)
}

// deleteExact resets the registry whether or not DEL succeeded: a key that may
// still be cached must not keep an old last-load time either.
func (m *manager[V]) deleteExact(ctx context.Context, k string) []string {
	removed := m.del(ctx, k)
	m.registry.Reset(ctx, k)
	if removed {
		return []string{k}
	}
	return nil
}

func (m *manager[V]) del(ctx context.Context, k string) bool {
	conn, err := m.router.Conn(ctx, k)
	if err != nil {
		m.absorb("delete", k, err)
		return false
	}
	defer m.release(conn)

	n, err := conn.Del(ctx, m.keys.EncodeKey(k)).Result()
	if err != nil {
		m.absorb("delete", k, err)
		return false
	}
	return n > 0
}

// deletePattern purges every shard; a failing shard is reported and skipped.
func (m *manager[V]) deletePattern(ctx context.Context, pattern string) []string {
	conns, err := m.router.Conns(ctx)
	if err != nil {
		m.absorb("delete", pattern, err)
		return nil
	}

	var removed []string
	failed := 0
	for _, conn := range conns {
		keys, err := m.purge(ctx, conn, pattern)
		if err != nil {
			failed++
			m.log.Warn("pattern delete failed on shard", Fields{"pattern": pattern, "shard": conn.Name(), "err": err})
			m.hooks.ShardFailed(pattern, conn.Name(), err)
			continue
		}
		for _, k := range keys {
			m.registry.Reset(ctx, k)
		}
		removed = append(removed, keys...)
	}

	m.hooks.PatternDeleted(pattern, len(conns), len(removed), failed)
	m.log.Debug("pattern delete finished", Fields{
		"pattern": pattern, "shards": len(conns), "deleted": len(removed), "failed": failed,
	})
	return removed
}

func (m *manager[V]) purge(ctx context.Context, conn router.Conn, pattern string) ([]string, error) {
	defer m.release(conn)

	wireKeys, err := purgeScript.Run(ctx, conn, []string{m.keys.EncodeKey(pattern)}).StringSlice()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(wireKeys))
	for _, wk := range wireKeys {
		k, err := m.keys.DecodeKey(wk)
		if err != nil {
			// already deleted; reset under the raw wire key rather than skip it
			m.log.Warn("deleted key could not be decoded", Fields{"key": wk, "err": err})
			k = wk
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *manager[V]) DeleteByDefaultKey(ctx context.Context, typeName, method string, args []any, subKeyExpr string, byPrefix bool) []string {
	if m.router == nil {
		return nil
	}
	var (
		key string
		err error
	)
	if byPrefix {
		key, err = m.derive.DefaultKeyPrefix(typeName, method, args, subKeyExpr)
		key += ":*"
	} else {
		key, err = m.derive.DefaultKey(typeName, method, args, subKeyExpr)
	}
	if err != nil {
		m.log.Error("derive default cache key failed", Fields{"type": typeName, "method": method, "err": err})
		return nil
	}
	return m.Delete(ctx, key)
}

func (m *manager[V]) DeleteByDefinedKey(ctx context.Context, keyExpr string, args []any) []string {
	if m.router == nil {
		return nil
	}
	key, err := m.derive.DefinedKey(keyExpr, args)
	if err != nil {
		m.log.Error("derive defined cache key failed", Fields{"expr": keyExpr, "err": err})
		return nil
	}
	return m.Delete(ctx, key)
}

func (m *manager[V]) absorb(op, k string, err error) {
	m.log.Error("cache "+op+" failed", Fields{"key": k, "err": err})
	m.hooks.OpFailed(op, k, err)
}

func (m *manager[V]) decodeFailed(k string, err error) {
	m.log.Warn("cached entry undecodable; treating as miss", Fields{"key": k, "err": err})
	m.hooks.DecodeFailed(k, err)
}

func (m *manager[V]) release(conn router.Conn) {
	if err := conn.Close(); err != nil {
		m.log.Warn("shard connection release failed", Fields{"shard": conn.Name(), "err": err})
	}
}
