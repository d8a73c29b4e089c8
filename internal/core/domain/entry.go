package domain

import (
	"strings"
	"time"
)

// PropertyMap is a bag of analyzer properties: name to scalar or
// list-of-scalars.
type PropertyMap map[string]any

// TextProperty is the distinguished property carrying extracted text in a
// raw analyzer response. It is split out of the metadata on update.
const TextProperty = "X-TIKA:content"

// FacetState is the resolution state of one facet of an Entry.
type FacetState int

const (
	// FacetUnknown means nothing has been resolved for the facet yet.
	FacetUnknown FacetState = iota

	// FacetSuccess means the facet holds a successfully extracted value.
	FacetSuccess

	// FacetFailure means a parser failure is recorded for the facet.
	FacetFailure
)

// String returns a short name for the state, for logs and errors.
func (s FacetState) String() string {
	switch s {
	case FacetUnknown:
		return "unknown"
	case FacetSuccess:
		return "success"
	case FacetFailure:
		return "failure"
	default:
		return "invalid"
	}
}

// facet is one independently-resolvable aspect of an Entry.
type facet[T any] struct {
	state   FacetState
	value   T
	failure *CachedFailure
}

// Entry represents everything currently known about the analyzer's output
// for one content key: a metadata facet, an extracted-text facet, and the
// UTC time of the most recent successful resolution.
//
// Entry is immutable. Every operation returns a new Entry, or the receiver
// itself (pointer-equal) when nothing changes, so callers can cheaply
// detect whether an operation had any effect.
//
// Two invariants hold after every operation:
//
//   - text success implies metadata success (the analyzer always yields
//     metadata alongside text; text-only success is impossible)
//   - the success timestamp is present iff metadata is a success
type Entry struct {
	key        ContentKey
	resolvedAt time.Time // zero when metadata is not a success
	metadata   facet[PropertyMap]
	text       facet[[]string]
}

// NewEntry returns an empty entry for key: both facets unknown, no
// timestamp.
func NewEntry(key ContentKey) *Entry {
	return &Entry{key: key}
}

// Key returns the content key this entry is about.
func (e *Entry) Key() ContentKey {
	return e.key
}

// ResolvedAt returns the UTC time of the most recent successful resolution
// and whether one is present.
func (e *Entry) ResolvedAt() (time.Time, bool) {
	return e.resolvedAt, !e.resolvedAt.IsZero()
}

// MetadataState returns the resolution state of the metadata facet.
func (e *Entry) MetadataState() FacetState {
	return e.metadata.state
}

// TextState returns the resolution state of the text facet.
func (e *Entry) TextState() FacetState {
	return e.text.state
}

// IsSufficient reports whether the entry answers the given request shape:
// the metadata facet is resolved (success or failure), and, unless
// metadataOnly, the text facet is resolved too.
func (e *Entry) IsSufficient(metadataOnly bool) bool {
	if e.metadata.state == FacetUnknown {
		return false
	}
	return metadataOnly || e.text.state != FacetUnknown
}

// Metadata returns the extracted metadata, or the recorded parser failure
// as an error. Calling it on an unresolved metadata facet is a programming
// error and panics with an InvariantError.
func (e *Entry) Metadata() (PropertyMap, error) {
	switch e.metadata.state {
	case FacetSuccess:
		return e.metadata.value, nil
	case FacetFailure:
		return nil, e.metadata.failure.Failure
	default:
		invariant("metadata requested for %q but facet is unresolved", e.key)
		return nil, nil
	}
}

// Text returns the extracted text, or the recorded parser failure as an
// error. Calling it on an unresolved text facet is a programming error and
// panics with an InvariantError.
func (e *Entry) Text() ([]string, error) {
	switch e.text.state {
	case FacetSuccess:
		return e.text.value, nil
	case FacetFailure:
		return nil, e.text.failure.Failure
	default:
		invariant("text requested for %q but facet is unresolved", e.key)
		return nil, nil
	}
}

// UpdateFromSuccess folds a successful raw analyzer response into the
// entry. The distinguished text property is trimmed and split out of the
// response (absent is treated as empty text); the remainder becomes the
// metadata value. Metadata is always set to success. Text is set to
// success only when the request asked for it: a metadata-only query never
// overwrites the text facet, whatever its prior state.
func (e *Entry) UpdateFromSuccess(now time.Time, metadataOnly bool, raw PropertyMap) *Entry {
	text, metadata := splitText(raw)

	next := *e
	next.metadata = facet[PropertyMap]{state: FacetSuccess, value: metadata}
	next.resolvedAt = now.UTC()
	if !metadataOnly {
		next.text = facet[[]string]{state: FacetSuccess, value: []string{text}}
	}
	return &next
}

// UpdateFromFailure folds a parser failure into the entry, recording it
// against the facet the failing request was about: the metadata facet for
// a metadata-only request, the text facet otherwise. The other facet is
// left untouched. System failures are never folded into an entry.
func (e *Entry) UpdateFromFailure(now time.Time, metadataOnly bool, failure *ParserError) *Entry {
	cached := &CachedFailure{
		Failure:      failure,
		RecordedAt:   now.UTC(),
		MetadataOnly: metadataOnly,
	}

	next := *e
	if metadataOnly {
		next.metadata = facet[PropertyMap]{state: FacetFailure, failure: cached}
		next.resolvedAt = time.Time{}
	} else {
		next.text = facet[[]string]{state: FacetFailure, failure: cached}
	}
	return &next
}

// ResolveFromOther fills any unknown facet of e with the corresponding
// facet of other, which must be an entry for the same key. Facets already
// resolved (success or failure) are never overwritten, even if other
// disagrees: first resolved wins, so shallower cache tiers keep authority
// once populated. Returns the receiver unchanged (pointer-equal) when
// other offers nothing new.
func (e *Entry) ResolveFromOther(other *Entry) *Entry {
	if other == nil {
		return e
	}
	if other.key != e.key {
		invariant("entries for %q and %q merged", e.key, other.key)
	}

	next := *e
	changed := false

	if e.metadata.state == FacetUnknown && other.metadata.state != FacetUnknown {
		next.metadata = other.metadata
		if other.metadata.state == FacetSuccess {
			next.resolvedAt = other.resolvedAt
		}
		changed = true
	}

	if e.text.state == FacetUnknown && other.text.state != FacetUnknown {
		// A text success can only be adopted alongside a metadata
		// success; taking it next to a metadata failure would break
		// the entry's invariants.
		if other.text.state == FacetFailure || next.metadata.state == FacetSuccess {
			next.text = other.text
			changed = true
		}
	}

	if !changed {
		return e
	}
	return &next
}

// Expire demotes stale facets back to unknown. If successCutoff is
// non-zero and the success timestamp is at or before it, every success
// facet is demoted and the timestamp cleared. Independently, each failure
// facet whose recorded time is at or before a non-zero failureCutoff is
// demoted. Returns the receiver unchanged (pointer-equal) when nothing
// meets a cutoff.
func (e *Entry) Expire(successCutoff, failureCutoff time.Time) *Entry {
	next := *e
	changed := false

	if !successCutoff.IsZero() && !e.resolvedAt.IsZero() && !e.resolvedAt.After(successCutoff) {
		if next.metadata.state == FacetSuccess {
			next.metadata = facet[PropertyMap]{}
		}
		if next.text.state == FacetSuccess {
			next.text = facet[[]string]{}
		}
		next.resolvedAt = time.Time{}
		changed = true
	}

	if !failureCutoff.IsZero() {
		if f := next.metadata.failure; next.metadata.state == FacetFailure && !f.RecordedAt.After(failureCutoff) {
			next.metadata = facet[PropertyMap]{}
			changed = true
		}
		if f := next.text.failure; next.text.state == FacetFailure && !f.RecordedAt.After(failureCutoff) {
			next.text = facet[[]string]{}
			changed = true
		}
	}

	if !changed {
		return e
	}
	return &next
}

// splitText extracts the trimmed text property from a raw response and
// returns it alongside the remaining properties.
func splitText(raw PropertyMap) (string, PropertyMap) {
	metadata := make(PropertyMap, len(raw))
	for name, value := range raw {
		if name == TextProperty {
			continue
		}
		metadata[name] = value
	}
	return strings.TrimSpace(textValue(raw[TextProperty])), metadata
}

// textValue renders the raw text property as a single string. The analyzer
// reports it as a string, but multi-part documents have been seen to
// produce a list of strings.
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, "\n")
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}
