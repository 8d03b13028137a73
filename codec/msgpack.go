package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack stores cached values as MessagePack (vmihailenco/msgpack/v5).
// Entries are usually smaller than JSON ones. Field names follow `msgpack`
// tags; renaming a tagged field makes older entries decode to zero values
// until they expire.
type Msgpack[V any] struct{}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
