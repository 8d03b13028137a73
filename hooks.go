package autocache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The manager calls them on hot paths.
type Hooks interface {
	// A Get finished. hit=false covers misses and absorbed failures.
	Lookup(storageKey string, hit bool)

	// A transport or encode failure was absorbed.
	// op ∈ {"set", "get", "delete"}
	OpFailed(op, storageKey string, err error)

	// A stored entry could not be unframed or decoded and was served as a miss.
	DecodeFailed(storageKey string, err error)

	// One shard failed during a pattern delete; the remaining shards were still purged.
	ShardFailed(pattern, shard string, err error)

	// A pattern delete finished across shards.
	// deleted is the number of keys removed, failed the number of shards that errored.
	PatternDeleted(pattern string, shards, deleted, failed int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Lookup(string, bool)                  {}
func (NopHooks) OpFailed(string, string, error)       {}
func (NopHooks) DecodeFailed(string, error)           {}
func (NopHooks) ShardFailed(string, string, error)    {}
func (NopHooks) PatternDeleted(string, int, int, int) {}
