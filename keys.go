package autocache

// KeyDeriver builds raw keys for the derived delete helpers. It must produce the
// same keys the caller's lookup path uses. See package keygen for the default.
type KeyDeriver interface {
	// DefaultKey is the key for one call: DefaultKeyPrefix + ":" + args digest.
	DefaultKey(typeName, method string, args []any, subKeyExpr string) (string, error)
	// DefaultKeyPrefix is the part of DefaultKey shared by all argument lists.
	DefaultKeyPrefix(typeName, method string, args []any, subKeyExpr string) (string, error)
	DefinedKey(keyExpr string, args []any) (string, error)
}

func namespaced(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}
