// Package local provides the in-process cache tier: a bounded,
// least-recently-used map from content key to entry. Each worker process
// owns its own instance; nothing is shared across processes at this tier.
package local

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
)

// Ensure Tier implements the interface.
var _ driven.CacheTier = (*Tier)(nil)

// DefaultSize is the default entry bound.
const DefaultSize = 256

// Tier is the process-local LRU cache tier.
type Tier struct {
	entries *lru.Cache[domain.ContentKey, *domain.Entry]
}

// NewTier creates a local tier bounded to size entries. Size zero or
// negative falls back to DefaultSize.
func NewTier(size int) (*Tier, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[domain.ContentKey, *domain.Entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU: %w", err)
	}
	return &Tier{entries: entries}, nil
}

// Get returns the cached entry for key, or domain.ErrNotFound. Entries
// are immutable values, so the cached pointer is returned directly.
func (t *Tier) Get(_ context.Context, key domain.ContentKey, _ bool) (*domain.Entry, error) {
	entry, ok := t.entries.Get(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// Put stores the entry, evicting the least recently used one when full.
func (t *Tier) Put(_ context.Context, entry *domain.Entry) error {
	t.entries.Add(entry.Key(), entry)
	return nil
}

// Len returns the number of cached entries.
func (t *Tier) Len() int {
	return t.entries.Len()
}
