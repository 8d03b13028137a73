package autoload

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/autocache"
)

// Redis shares last-load times across processes. Each key is stored as
// "autoload:<ns>:<storageKey>" holding unix nanoseconds; "0" marks a reset key.
// Failures are logged and never returned: a lost Touch only makes a key look due.
type Redis struct {
	rdb       redis.UniversalClient
	ns        string
	log       autocache.Logger
	ownClient bool
}

type RedisOptions struct {
	Namespace string
	Logger    autocache.Logger // nil => NopLogger
	// CloseClient makes Close close the client.
	CloseClient bool
}

func NewRedis(client redis.UniversalClient, opts RedisOptions) *Redis {
	var log autocache.Logger = autocache.NopLogger{}
	if opts.Logger != nil {
		log = opts.Logger
	}
	return &Redis{rdb: client, ns: opts.Namespace, log: log, ownClient: opts.CloseClient}
}

func (s *Redis) key(k string) string { return "autoload:" + s.ns + ":" + k }

func (s *Redis) Touch(ctx context.Context, k string, at time.Time, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.key(k), nanos(at), ttl).Err(); err != nil {
		s.log.Warn("autoload touch failed", autocache.Fields{"key": k, "err": err})
	}
}

func (s *Redis) LastLoad(ctx context.Context, k string) (time.Time, bool) {
	res, err := s.rdb.Get(ctx, s.key(k)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false
	}
	if err != nil {
		s.log.Warn("autoload read failed", autocache.Fields{"key": k, "err": err})
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(res, 10, 64)
	if err != nil {
		s.log.Warn("autoload entry unparsable", autocache.Fields{"key": k, "err": err})
		return time.Time{}, false
	}
	if n == 0 {
		return time.Time{}, true
	}
	return time.Unix(0, n), true
}

// Reset overwrites an existing entry with "0" and keeps its TTL. Unknown keys are left alone.
func (s *Redis) Reset(ctx context.Context, k string) {
	err := s.rdb.SetArgs(ctx, s.key(k), "0", redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.log.Warn("autoload reset failed", autocache.Fields{"key": k, "err": err})
	}
}

// Len scans the namespace. It is meant for operators and tests, not hot paths.
func (s *Redis) Len(ctx context.Context) int {
	n := 0
	iter := s.rdb.Scan(ctx, 0, s.key("*"), 512).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		s.log.Warn("autoload scan failed", autocache.Fields{"ns": s.ns, "err": err})
	}
	return n
}

func (s *Redis) Close(context.Context) error {
	if s.ownClient {
		return s.rdb.Close()
	}
	return nil
}

func nanos(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixNano(), 10)
}
