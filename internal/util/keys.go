package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HasGlob reports whether k carries the glob characters that turn a key into a pattern.
func HasGlob(k string) bool {
	return strings.ContainsAny(k, "*?")
}

// Digest returns the first 16 hex chars of sha256(b).
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
