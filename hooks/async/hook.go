// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{LookupEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	m, _ := autocache.New[User](autocache.Options[User]{
//	    Namespace: "app:user",
//	    Router:    router,
//	    Hooks:     hooks,
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/autocache"
)

// Hooks runs an inner autocache.Hooks on worker goroutines.
// Events that do not fit in the queue are dropped and counted.
type Hooks struct {
	inner   autocache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ autocache.Hooks = (*Hooks)(nil)

func New(inner autocache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped is the number of events lost to a full queue or a closed decorator.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Lookup(k string, hit bool) { h.try(func() { h.inner.Lookup(k, hit) }) }
func (h *Hooks) OpFailed(op, k string, err error) {
	h.try(func() { h.inner.OpFailed(op, k, err) })
}
func (h *Hooks) DecodeFailed(k string, err error) { h.try(func() { h.inner.DecodeFailed(k, err) }) }
func (h *Hooks) ShardFailed(p, shard string, err error) {
	h.try(func() { h.inner.ShardFailed(p, shard, err) })
}
func (h *Hooks) PatternDeleted(p string, shards, deleted, failed int) {
	h.try(func() { h.inner.PatternDeleted(p, shards, deleted, failed) })
}
