package codec

// StringKey sends keys to the store as-is.
type StringKey struct{}

var _ Key = StringKey{}

func (StringKey) EncodeKey(k string) string          { return k }
func (StringKey) DecodeKey(k string) (string, error) { return k, nil }
