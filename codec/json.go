package codec

import "encoding/json"

// JSON is what a Manager uses when Options.Codec is nil. Entries stay readable
// with redis-cli (after the 17-byte load-time header).
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
