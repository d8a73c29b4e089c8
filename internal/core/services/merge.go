package services

import (
	"github.com/custodia-labs/extracta/internal/core/domain"
)

// MergeText combines extracted text with text produced by another handler,
// according to the profile's merge strategy. This is the contract the host
// dispatch layer consumes when a profile wraps another handler.
func MergeText(strategy domain.MergeStrategy, extracted, other []string) []string {
	switch strategy {
	case domain.MergeAppend:
		return append(cloneSlice(other), extracted...)
	case domain.MergePrepend:
		return append(cloneSlice(extracted), other...)
	case domain.MergeUnion:
		return unionSlices(other, extracted)
	default:
		return extracted
	}
}

// MergeMetadata combines extracted metadata with metadata produced by
// another handler, key by key. Keys present on only one side are kept
// as-is; conflicting keys follow the merge strategy, combining scalar
// values into lists where both are kept.
func MergeMetadata(strategy domain.MergeStrategy, extracted, other domain.PropertyMap) domain.PropertyMap {
	merged := make(domain.PropertyMap, len(extracted)+len(other))
	for name, value := range other {
		merged[name] = value
	}
	for name, value := range extracted {
		existing, conflict := merged[name]
		if !conflict {
			merged[name] = value
			continue
		}
		switch strategy {
		case domain.MergeAppend:
			merged[name] = appendValues(existing, value)
		case domain.MergePrepend:
			merged[name] = appendValues(value, existing)
		case domain.MergeUnion:
			merged[name] = unionValues(existing, value)
		default:
			merged[name] = value
		}
	}
	return merged
}

// ComposeContent assembles the indexable content for a profile from the
// extracted text and the formatted metadata values.
func ComposeContent(composition domain.ContentComposition, text []string, metadata domain.PropertyMap) []string {
	switch composition {
	case domain.ComposeText:
		return text
	case domain.ComposeMetadata:
		return metadataStrings(metadata)
	default:
		return append(cloneSlice(text), metadataStrings(metadata)...)
	}
}

// metadataStrings flattens metadata values into a deterministic-per-value
// list of strings for indexing. Map iteration order is not significant to
// full-text indexing.
func metadataStrings(metadata domain.PropertyMap) []string {
	out := make([]string, 0, len(metadata))
	for _, value := range metadata {
		out = append(out, flattenValue(value)...)
	}
	return out
}

func flattenValue(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func unionSlices(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, dup := seen[s]; !dup {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, dup := seen[s]; !dup {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// appendValues combines two property values into one, lifting scalars
// into lists as needed.
func appendValues(first, second any) any {
	return append(toList(first), toList(second)...)
}

func unionValues(first, second any) any {
	combined := append(toList(first), toList(second)...)
	seen := make(map[any]struct{}, len(combined))
	out := make([]any, 0, len(combined))
	for _, v := range combined {
		key := any(nil)
		if comparable := isComparable(v); comparable {
			key = v
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, v)
	}
	return out
}

func toList(value any) []any {
	if list, ok := value.([]any); ok {
		return list
	}
	return []any{value}
}

func isComparable(v any) bool {
	switch v.(type) {
	case []any, []string, map[string]any:
		return false
	default:
		return true
	}
}
