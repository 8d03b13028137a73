package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/autocache"
)

type countingHooks struct {
	autocache.NopHooks
	mu      sync.Mutex
	lookups int
	failed  []string
	block   chan struct{}
}

func (c *countingHooks) Lookup(string, bool) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.lookups++
	c.mu.Unlock()
}

func (c *countingHooks) OpFailed(op, _ string, _ error) {
	c.mu.Lock()
	c.failed = append(c.failed, op)
	c.mu.Unlock()
}

func TestCloseDrainsQueuedEvents(t *testing.T) {
	inner := &countingHooks{}
	h := New(inner, 2, 64)
	for i := 0; i < 10; i++ {
		h.Lookup("k", i%2 == 0)
	}
	h.OpFailed("get", "k", errors.New("x"))
	h.Close()

	if inner.lookups != 10 || len(inner.failed) != 1 || inner.failed[0] != "get" {
		t.Fatalf("lookups=%d failed=%v", inner.lookups, inner.failed)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	inner := &countingHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// one event parks the worker, one fills the queue, the rest overflow
	for i := 0; i < 10; i++ {
		h.Lookup("k", true)
	}
	close(inner.block)
	h.Close()

	if h.Dropped() == 0 {
		t.Fatalf("expected drops with a blocked worker and qlen=1")
	}
	if got := uint64(inner.lookups) + h.Dropped(); got != 10 {
		t.Fatalf("delivered+dropped=%d want 10", got)
	}
}

func TestEventsAfterCloseAreDropped(t *testing.T) {
	inner := &countingHooks{}
	h := New(inner, 1, 8)
	h.Close()
	h.Close()
	h.PatternDeleted("p*", 1, 0, 0)
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}
