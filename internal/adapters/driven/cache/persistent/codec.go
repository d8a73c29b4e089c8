package persistent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/extracta/internal/core/domain"
)

// SchemaVersion is the version written into every persisted document.
// Reads require an exact match; a mismatch is a hard failure, never a
// silent upgrade.
const SchemaVersion = 1

// baseDocument is the persisted form of an entry minus its bulk text.
//
// The metadata field is an object on success, false when a failure is
// recorded, or null when unknown. The contents field is true when text is
// stored in the separate contents document, false when a failure is
// recorded, or null when unknown.
type baseDocument struct {
	Schema          int              `json:"schema"`
	Key             string           `json:"key"`
	ResolvedAt      *time.Time       `json:"resolvedAt"`
	Metadata        any              `json:"metadata"`
	MetadataFailure *failureDocument `json:"metadataFailure"`
	Contents        any              `json:"contents"`
	ContentsFailure *failureDocument `json:"contentsFailure"`
}

// contentsDocument carries only the extracted-text list, split from the
// base document so metadata-only reads avoid fetching bulk text.
type contentsDocument struct {
	Schema int      `json:"schema"`
	Key    string   `json:"key"`
	Text   []string `json:"text"`
}

// failureDocument persists enough of a cached failure to reconstruct a
// parser-failure placeholder on read: the recorded time, the request
// shape in effect, and the message text. Full error fidelity is not kept.
type failureDocument struct {
	RecordedAt   time.Time `json:"recordedAt"`
	MetadataOnly bool      `json:"metadataOnly"`
	Message      string    `json:"message"`
}

// encodeEntry renders an entry as its base document and, when text is a
// success, its contents document. contentsData is nil otherwise.
func encodeEntry(entry *domain.Entry) (baseData, contentsData []byte, err error) {
	s := entry.Snapshot()

	base := baseDocument{
		Schema: SchemaVersion,
		Key:    s.Key.String(),
	}
	if !s.ResolvedAt.IsZero() {
		resolvedAt := s.ResolvedAt
		base.ResolvedAt = &resolvedAt
	}

	switch s.MetadataState {
	case domain.FacetSuccess:
		base.Metadata = s.Metadata
		if base.Metadata == nil {
			base.Metadata = domain.PropertyMap{}
		}
	case domain.FacetFailure:
		base.Metadata = false
		base.MetadataFailure = encodeFailure(s.MetadataFailure)
	}

	switch s.TextState {
	case domain.FacetSuccess:
		base.Contents = true
		contents := contentsDocument{
			Schema: SchemaVersion,
			Key:    s.Key.String(),
			Text:   s.Text,
		}
		contentsData, err = json.Marshal(contents)
		if err != nil {
			return nil, nil, fmt.Errorf("marshalling contents document: %w", err)
		}
	case domain.FacetFailure:
		base.Contents = false
		base.ContentsFailure = encodeFailure(s.TextFailure)
	}

	baseData, err = json.Marshal(base)
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling base document: %w", err)
	}
	return baseData, contentsData, nil
}

// parseBase unmarshals and validates a base document for key.
func parseBase(key domain.ContentKey, data []byte) (*baseDocument, error) {
	var base baseDocument
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("unmarshalling base document for %q: %w", key, err)
	}
	if base.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: base document for %q has schema %d, want %d", domain.ErrSchemaMismatch, key, base.Schema, SchemaVersion)
	}
	if base.Key != key.String() {
		return nil, fmt.Errorf("%w: base document addressed by %q carries key %q", domain.ErrKeyMismatch, key, base.Key)
	}
	return &base, nil
}

// parseContents unmarshals and validates a contents document for key.
func parseContents(key domain.ContentKey, data []byte) (*contentsDocument, error) {
	var contents contentsDocument
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("unmarshalling contents document for %q: %w", key, err)
	}
	if contents.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: contents document for %q has schema %d, want %d", domain.ErrSchemaMismatch, key, contents.Schema, SchemaVersion)
	}
	if contents.Key != key.String() {
		return nil, fmt.Errorf("%w: contents document addressed by %q carries key %q", domain.ErrKeyMismatch, key, contents.Key)
	}
	return &contents, nil
}

// buildEntry reconstructs an entry from a parsed base document and an
// optional contents document. A nil contents document with base.Contents
// true leaves the text facet unknown: the pair of blobs is written
// without cross-file atomicity, so a reader must tolerate the contents
// blob being momentarily absent or stale.
func buildEntry(key domain.ContentKey, base *baseDocument, contents *contentsDocument) (*domain.Entry, error) {
	s := domain.Snapshot{Key: key}
	if base.ResolvedAt != nil {
		s.ResolvedAt = base.ResolvedAt.UTC()
	}

	switch metadata := base.Metadata.(type) {
	case map[string]any:
		s.MetadataState = domain.FacetSuccess
		s.Metadata = domain.PropertyMap(metadata)
	case bool:
		if metadata {
			return nil, fmt.Errorf("base document for %q has invalid metadata marker true", key)
		}
		s.MetadataState = domain.FacetFailure
		s.MetadataFailure = decodeFailure(base.MetadataFailure)
		if s.MetadataFailure == nil {
			return nil, fmt.Errorf("base document for %q records a metadata failure without details", key)
		}
	case nil:
		// unknown
	default:
		return nil, fmt.Errorf("base document for %q has invalid metadata field %T", key, base.Metadata)
	}

	switch marker := base.Contents.(type) {
	case bool:
		if marker {
			if contents != nil {
				s.TextState = domain.FacetSuccess
				s.Text = contents.Text
			}
		} else {
			s.TextState = domain.FacetFailure
			s.TextFailure = decodeFailure(base.ContentsFailure)
			if s.TextFailure == nil {
				return nil, fmt.Errorf("base document for %q records a contents failure without details", key)
			}
		}
	case nil:
		// unknown
	default:
		return nil, fmt.Errorf("base document for %q has invalid contents field %T", key, base.Contents)
	}

	entry, err := domain.FromSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("rebuilding entry: %w", err)
	}
	return entry, nil
}

func encodeFailure(f *domain.CachedFailure) *failureDocument {
	if f == nil {
		return nil
	}
	return &failureDocument{
		RecordedAt:   f.RecordedAt,
		MetadataOnly: f.MetadataOnly,
		Message:      f.Failure.Message,
	}
}

func decodeFailure(doc *failureDocument) *domain.CachedFailure {
	if doc == nil {
		return nil
	}
	return &domain.CachedFailure{
		Failure:      &domain.ParserError{Message: doc.Message},
		RecordedAt:   doc.RecordedAt.UTC(),
		MetadataOnly: doc.MetadataOnly,
	}
}
