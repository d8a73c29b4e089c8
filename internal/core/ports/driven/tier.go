package driven

import (
	"context"

	"github.com/custodia-labs/extracta/internal/core/domain"
)

// CacheTier is one layer of the response cache. Tiers are consulted in
// order of increasing durability and latency: local (in-process LRU),
// shared (external fast cache), persistent (content-addressed blob store).
type CacheTier interface {
	// Get returns the entry stored for key, or domain.ErrNotFound on a
	// miss. When metadataOnly is set, implementations may skip loading
	// bulk text and return an entry whose text facet is unknown.
	Get(ctx context.Context, key domain.ContentKey, metadataOnly bool) (*domain.Entry, error)

	// Put stores the entry, creating or overwriting whatever was there.
	// Writes are synchronous: when Put returns, a subsequent Get on this
	// tier observes an entry at least as resolved as the one written.
	Put(ctx context.Context, entry *domain.Entry) error
}
