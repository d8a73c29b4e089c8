package driven

import "context"

// BlobStore is a pluggable key/value blob store backing the persistent
// cache tier. Names are relative slash-separated paths chosen by the
// caller; stores treat them as opaque beyond path separators.
type BlobStore interface {
	// Get returns the blob stored under name, or domain.ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put stores data under name, creating or overwriting atomically.
	// There is no multi-blob transaction: readers must tolerate one of a
	// pair of related blobs being momentarily absent or stale.
	Put(ctx context.Context, name string, data []byte) error

	// Close releases any resources held by the store.
	Close() error
}
