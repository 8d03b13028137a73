package autocache

import (
	"errors"
	"fmt"
)

// ErrPatternKey reports a key carrying glob characters where a concrete key is required.
var ErrPatternKey = errors.New("autocache: key contains '*' or '?'")

// KeyError is returned by Set when the effective key is a pattern.
// It points at a key-generation bug in the caller and is never swallowed.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("autocache: cache key %q has '*' or '?'", e.Key)
}

func (e *KeyError) Unwrap() error { return ErrPatternKey }
