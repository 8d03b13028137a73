package codec

import "google.golang.org/protobuf/proto"

// Protobuf stores cached proto messages in their binary wire form. Unknown
// fields survive a round trip, so readers on an older schema keep serving
// entries written by newer ones.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *mypb.User { return &mypb.User{} }
}

// NewProtobuf takes the constructor Decode uses for each cached entry.
func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
