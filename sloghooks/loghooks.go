package sloghooks

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/autocache"
	"github.com/unkn0wn-root/autocache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	LookupEvery       uint64
	DecodeFailedEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	lookupCtr atomic.Uint64
	decodeCtr atomic.Uint64
}

var _ autocache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Digest([]byte(k))
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Lookup(storageKey string, hit bool) {
	if h.l == nil || !sample(h.opts.LookupEvery, &h.lookupCtr) {
		return
	}
	h.l.Debug("autocache.lookup",
		"key", h.redact(storageKey),
		"hit", hit)
}

func (h *Hooks) OpFailed(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("autocache.op_failed",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) DecodeFailed(storageKey string, err error) {
	if h.l == nil || !sample(h.opts.DecodeFailedEvery, &h.decodeCtr) {
		return
	}
	h.l.Warn("autocache.decode_failed",
		"key", h.redact(storageKey),
		"err", err)
}

// Patterns are logged unredacted: they name key families, not single entries.
func (h *Hooks) ShardFailed(pattern, shard string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("autocache.shard_failed",
		"pattern", pattern,
		"shard", shard,
		"err", err)
}

func (h *Hooks) PatternDeleted(pattern string, shards, deleted, failed int) {
	if h.l == nil {
		return
	}
	level := slog.LevelInfo
	if failed > 0 {
		level = slog.LevelWarn
	}
	h.l.Log(context.Background(), level, "autocache.pattern_deleted",
		"pattern", pattern,
		"shards", shards,
		"deleted", deleted,
		"failed", failed)
}
