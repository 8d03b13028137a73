package autocache

import "time"

// Wrapper is the stored envelope: the caller's value plus the time it was loaded.
// Set overwrites LastLoad right before encoding; Get never touches it.
type Wrapper[V any] struct {
	Value    V
	LastLoad time.Time
}

// Wrap returns a Wrapper around v. LastLoad is stamped by Set.
func Wrap[V any](v V) *Wrapper[V] {
	return &Wrapper[V]{Value: v}
}
