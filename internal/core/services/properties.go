package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/extracta/internal/core/domain"
)

// PropertyKind is the closed set of value shapes a known analyzer
// property normalises to. Each known property maps to a kind plus its
// static arguments; dispatch is a plain switch, so there are no dynamic
// processor values to carry around.
type PropertyKind int

const (
	// KindText joins scalar-or-list values into one string.
	KindText PropertyKind = iota

	// KindInteger parses the value as a base-10 integer.
	KindInteger

	// KindTimestamp parses the value as an RFC 3339 timestamp.
	KindTimestamp

	// KindList keeps the value as a list of strings.
	KindList
)

// propertySpec is one row of the known-property table: canonical name,
// value kind, and the kind's static arguments.
type propertySpec struct {
	name      string
	kind      PropertyKind
	separator string // KindText join separator
}

// knownProperties maps raw analyzer property names to their canonical
// form. Unknown properties pass through untouched.
var knownProperties = map[string]propertySpec{
	"dc:title":           {name: "title", kind: KindText, separator: " "},
	"dc:creator":         {name: "author", kind: KindText, separator: ", "},
	"meta:author":        {name: "author", kind: KindText, separator: ", "},
	"dc:description":     {name: "description", kind: KindText, separator: " "},
	"dc:language":        {name: "language", kind: KindText, separator: ", "},
	"meta:keyword":       {name: "keywords", kind: KindList},
	"xmpTPg:NPages":      {name: "pages", kind: KindInteger},
	"meta:creation-date": {name: "created", kind: KindTimestamp},
	"dcterms:created":    {name: "created", kind: KindTimestamp},
	"dcterms:modified":   {name: "modified", kind: KindTimestamp},
	"Content-Type":       {name: "content-type", kind: KindText, separator: "; "},
}

// NormaliseProperties maps raw analyzer properties to their canonical
// names and value shapes for display and merging. Raw names without a
// table entry are kept verbatim. Raw names are visited in lexicographic
// order, so when a canonical name is produced by more than one raw
// property the lexicographically first raw name wins.
func NormaliseProperties(raw domain.PropertyMap) domain.PropertyMap {
	names := make([]string, 0, len(raw))
	for rawName := range raw {
		names = append(names, rawName)
	}
	sort.Strings(names)

	out := make(domain.PropertyMap, len(raw))
	for _, rawName := range names {
		value := raw[rawName]
		spec, known := knownProperties[rawName]
		if !known {
			if _, taken := out[rawName]; !taken {
				out[rawName] = value
			}
			continue
		}
		if _, taken := out[spec.name]; taken {
			continue
		}
		if normalised, ok := normaliseValue(spec, value); ok {
			out[spec.name] = normalised
		}
	}
	return out
}

// normaliseValue applies a spec's kind to a raw value. Values that do not
// parse for their kind are dropped rather than kept malformed.
func normaliseValue(spec propertySpec, value any) (any, bool) {
	switch spec.kind {
	case KindInteger:
		n, err := strconv.Atoi(scalarString(value))
		if err != nil {
			return nil, false
		}
		return n, true
	case KindTimestamp:
		ts, err := time.Parse(time.RFC3339, scalarString(value))
		if err != nil {
			return nil, false
		}
		return ts.UTC(), true
	case KindList:
		return flattenValue(value), true
	default:
		return strings.Join(flattenValue(value), spec.separator), true
	}
}

// scalarString renders a scalar-or-singleton-list value as one string.
func scalarString(value any) string {
	parts := flattenValue(value)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
