// Package codec holds the two serialization boundaries of autocache: value
// codecs (V <-> payload bytes, framed later with the load time) and key codecs
// (logical key <-> wire key).
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Key maps effective cache keys to the keys sent to the store and back.
// EncodeKey is also applied to delete patterns, so implementations must keep
// glob characters meaningful: a pattern must match exactly the encoded forms of
// the keys the unencoded pattern matches.
type Key interface {
	EncodeKey(string) string
	DecodeKey(string) (string, error)
}
