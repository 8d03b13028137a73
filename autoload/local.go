package autoload

import (
	"context"
	"sync"
	"time"
)

// Local keeps last-load times in-process.
// An optional sweep loop drops expired entries.
type Local struct {
	mu      sync.RWMutex
	entries map[string]entry
	ticker  *time.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	now func() time.Time
}

// NewLocal creates a Local registry. sweepInterval <= 0 disables the sweep loop;
// expired entries are then only hidden, and removed by an explicit Sweep.
func NewLocal(sweepInterval time.Duration) *Local {
	s := &Local{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	if sweepInterval > 0 {
		s.ticker = time.NewTicker(sweepInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Sweep()
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Touch(_ context.Context, k string, at time.Time, ttl time.Duration) {
	e := entry{LastLoad: at, Expires: expiry(s.now(), ttl)}
	s.mu.Lock()
	s.entries[k] = e
	s.mu.Unlock()
}

func (s *Local) LastLoad(_ context.Context, k string) (time.Time, bool) {
	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()
	if !ok || e.expired(s.now()) {
		return time.Time{}, false
	}
	return e.LastLoad, true
}

// Reset zeroes the last-load time of a known key and keeps its expiry.
func (s *Local) Reset(_ context.Context, k string) {
	now := s.now()
	s.mu.Lock()
	if e, ok := s.entries[k]; ok && !e.expired(now) {
		e.LastLoad = time.Time{}
		s.entries[k] = e
	}
	s.mu.Unlock()
}

func (s *Local) Len(context.Context) int {
	now := s.now()
	n := 0
	s.mu.RLock()
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	s.mu.RUnlock()
	return n
}

// Sweep removes expired entries.
func (s *Local) Sweep() {
	now := s.now()
	s.mu.Lock()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}

func (s *Local) Close(context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop()
			s.wg.Wait()
		}
	})
	return nil
}
