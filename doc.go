// Package autocache implements a fail-soft cache-access layer over a sharded
// Redis keyspace. Keys are namespaced, routed to exactly one shard, and every
// invalidation is reported to an auto-load registry so that background
// refreshers never trust a last-load time that predates a delete.
//
// Components:
//   - Router: resolves the shard connection for a key and enumerates all
//     shards for fan-out (router/rendezvous, router/ring).
//   - Codec[V]: (de)serializes V <-> []byte; codec.Key maps keys to wire keys.
//   - AutoLoadRegistry: told about every deleted key (see package autoload).
//
// Keys:
//
//	<ns>:<key>   - when Options.Namespace is set
//	<key>        - otherwise
//
// Keys containing '*' or '?' are patterns. Set rejects them; Delete fans out to
// every shard and removes all matches with one atomic script per shard.
// Cross-shard invalidation is not atomic: readers may observe some shards
// purged and others not yet.
//
// Failure policy: only a pattern key passed to Set is reported to the caller.
// Transport and codec failures are logged, reported to Hooks, and degrade to a
// miss or a no-op.
package autocache
