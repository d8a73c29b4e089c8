package services

import "github.com/custodia-labs/extracta/internal/core/domain"

// SuppressFailure reports whether the profile directs a classified failure
// to be treated as if the analyzer had returned an empty result, for the
// given facet (metadata or content). Unclassified errors are never
// suppressed.
func SuppressFailure(profile domain.Profile, metadataFacet bool, err error) bool {
	switch {
	case domain.IsParserError(err):
		return profile.IgnoreParserErrors(metadataFacet)
	case domain.IsSystemError(err):
		return profile.IgnoreSystemErrors(metadataFacet)
	default:
		return false
	}
}
