package domain

import (
	"fmt"
	"time"
)

// Snapshot is a flat, exported view of an Entry's cacheable state. It
// exists for serialisation: adapters turn entries into snapshots, persist
// them, and rebuild entries through FromSnapshot on the way back in.
type Snapshot struct {
	Key        ContentKey
	ResolvedAt time.Time // zero when no success timestamp is present

	MetadataState   FacetState
	Metadata        PropertyMap
	MetadataFailure *CachedFailure

	TextState   FacetState
	Text        []string
	TextFailure *CachedFailure
}

// Snapshot returns the entry's state as a Snapshot.
func (e *Entry) Snapshot() Snapshot {
	return Snapshot{
		Key:             e.key,
		ResolvedAt:      e.resolvedAt,
		MetadataState:   e.metadata.state,
		Metadata:        e.metadata.value,
		MetadataFailure: e.metadata.failure,
		TextState:       e.text.state,
		Text:            e.text.value,
		TextFailure:     e.text.failure,
	}
}

// FromSnapshot rebuilds an Entry from a persisted snapshot, validating the
// entry invariants. Persisted data is outside this process's control, so
// violations surface as errors rather than panics: a bad snapshot means a
// corrupt document, not a programming bug here.
func FromSnapshot(s Snapshot) (*Entry, error) {
	if s.Key == "" {
		return nil, fmt.Errorf("snapshot has no content key")
	}
	if s.TextState == FacetSuccess && s.MetadataState != FacetSuccess {
		return nil, fmt.Errorf("snapshot for %q has text success without metadata success", s.Key)
	}
	if (s.MetadataState == FacetSuccess) != !s.ResolvedAt.IsZero() {
		return nil, fmt.Errorf("snapshot for %q has timestamp state inconsistent with metadata state %s", s.Key, s.MetadataState)
	}
	if s.MetadataState == FacetFailure && s.MetadataFailure == nil {
		return nil, fmt.Errorf("snapshot for %q has metadata failure without details", s.Key)
	}
	if s.TextState == FacetFailure && s.TextFailure == nil {
		return nil, fmt.Errorf("snapshot for %q has text failure without details", s.Key)
	}

	e := &Entry{
		key:        s.Key,
		resolvedAt: s.ResolvedAt,
	}
	switch s.MetadataState {
	case FacetSuccess:
		e.metadata = facet[PropertyMap]{state: FacetSuccess, value: s.Metadata}
	case FacetFailure:
		e.metadata = facet[PropertyMap]{state: FacetFailure, failure: s.MetadataFailure}
	}
	switch s.TextState {
	case FacetSuccess:
		e.text = facet[[]string]{state: FacetSuccess, value: s.Text}
	case FacetFailure:
		e.text = facet[[]string]{state: FacetFailure, failure: s.TextFailure}
	}
	return e, nil
}
