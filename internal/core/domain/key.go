package domain

// ContentKey is a content-addressing hash (hex-encoded) identifying a
// file's bytes independent of name or location. Identical content anywhere
// in the host system maps to the same key. Immutable once computed.
type ContentKey string

// String returns the key as a plain string.
func (k ContentKey) String() string {
	return string(k)
}

// Valid reports whether the key is long enough to address storage with.
// Persistent tiers bucket on the first two characters, so anything
// shorter cannot be stored.
func (k ContentKey) Valid() bool {
	return len(k) >= 2
}
