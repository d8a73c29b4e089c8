// Package persistent provides the durable cache tier: schema-versioned
// JSON documents in a content-addressed blob store. Each entry is split
// into a base document (everything but bulk text) and a contents document
// (the extracted-text list), so metadata-only reads never fetch text.
package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
	"github.com/custodia-labs/extracta/internal/logger"
)

// Ensure Tier implements the interface.
var _ driven.CacheTier = (*Tier)(nil)

// Tier is the persistent cache tier over a pluggable blob store.
type Tier struct {
	store driven.BlobStore
}

// NewTier creates a persistent tier over the given blob store.
func NewTier(store driven.BlobStore) *Tier {
	return &Tier{store: store}
}

// Get loads the entry stored for key. When metadataOnly is set the
// contents blob is never fetched and the returned entry's text facet is
// left unknown even if text is stored.
func (t *Tier) Get(ctx context.Context, key domain.ContentKey, metadataOnly bool) (*domain.Entry, error) {
	baseName, contentsName, err := blobNames(key)
	if err != nil {
		return nil, err
	}

	baseData, err := t.store.Get(ctx, baseName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading base document: %w", err)
	}

	base, err := parseBase(key, baseData)
	if err != nil {
		return nil, err
	}

	var contents *contentsDocument
	if marker, ok := base.Contents.(bool); ok && marker && !metadataOnly {
		contentsData, err := t.store.Get(ctx, contentsName)
		switch {
		case err == nil:
			contents, err = parseContents(key, contentsData)
			if err != nil {
				return nil, err
			}
		case errors.Is(err, domain.ErrNotFound):
			// The two blobs are written independently; an absent
			// contents blob just leaves text unresolved.
			logger.Warn("contents document missing for %s, treating text as unresolved", key)
		default:
			return nil, fmt.Errorf("reading contents document: %w", err)
		}
	}

	return buildEntry(key, base, contents)
}

// Put stores the entry. The contents document is written before the base
// document, so a reader that observes the new base can usually observe
// the text it points at; there is no cross-blob atomicity beyond that.
func (t *Tier) Put(ctx context.Context, entry *domain.Entry) error {
	baseName, contentsName, err := blobNames(entry.Key())
	if err != nil {
		return err
	}

	baseData, contentsData, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	if contentsData != nil {
		if err := t.store.Put(ctx, contentsName, contentsData); err != nil {
			return fmt.Errorf("writing contents document: %w", err)
		}
	}
	if err := t.store.Put(ctx, baseName, baseData); err != nil {
		return fmt.Errorf("writing base document: %w", err)
	}
	return nil
}

// blobNames derives the two blob names for a key, bucketed on its first
// characters so no directory accumulates unbounded entries:
// k[0]/k[0]k[1]/k.base.json and k[0]/k[0]k[1]/k.contents.json.
func blobNames(key domain.ContentKey) (base, contents string, err error) {
	if !key.Valid() {
		return "", "", fmt.Errorf("content key %q too short to address storage", key)
	}
	k := key.String()
	prefix := fmt.Sprintf("%s/%s/%s", k[:1], k[:2], k)
	return prefix + ".base.json", prefix + ".contents.json", nil
}
