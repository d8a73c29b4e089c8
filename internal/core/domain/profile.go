package domain

import "time"

// HandlerStrategy selects how the host platform combines this handler with
// whatever handler it would otherwise use for a mime type. It is consumed
// by the host's dispatch layer, not by the cache itself.
type HandlerStrategy int

const (
	// HandlerSolo makes this the only handler for the mime type.
	HandlerSolo HandlerStrategy = iota

	// HandlerOverride replaces the host's own handler.
	HandlerOverride

	// HandlerWrap runs this handler around the host's own handler and
	// merges the results.
	HandlerWrap
)

// MergeStrategy selects how extracted values are combined with values
// produced by another handler.
type MergeStrategy int

const (
	// MergeReplace discards the other handler's value.
	MergeReplace MergeStrategy = iota

	// MergeAppend puts the extracted value after the other value.
	MergeAppend

	// MergePrepend puts the extracted value before the other value.
	MergePrepend

	// MergeUnion keeps both values, dropping exact duplicates.
	MergeUnion
)

// ContentComposition selects which facets feed the indexed content.
type ContentComposition int

const (
	// ComposeText indexes extracted text only.
	ComposeText ContentComposition = iota

	// ComposeMetadata indexes formatted metadata only.
	ComposeMetadata

	// ComposeBoth indexes text followed by formatted metadata.
	ComposeBoth
)

// Profile is the per-mime-type configuration bundle, resolved once per
// mime type by the profile store. It is an immutable value; core
// operations receive it explicitly and never consult ambient state.
type Profile struct {
	// Mime is the mime type this profile was resolved for.
	Mime string

	// Handler tells the host dispatch layer how to register the handler.
	Handler HandlerStrategy

	// OCRAllowed permits the analyzer to run OCR on image content.
	// OCR is force-disabled for metadata-only requests regardless.
	OCRAllowed bool

	// OCRLanguages is a "+"-delimited list of OCR language codes.
	// Empty means the analyzer's default.
	OCRLanguages string

	// ContentMerge combines extracted content with other handler output.
	ContentMerge MergeStrategy

	// ContentComposition selects the facets feeding indexed content.
	ContentComposition ContentComposition

	// MetadataMerge combines extracted metadata with other handler output.
	MetadataMerge MergeStrategy

	// IgnoreContentSystemErrors treats a system failure on a content
	// request as an empty result instead of an error.
	IgnoreContentSystemErrors bool

	// IgnoreContentParserErrors treats a parser failure on a content
	// request as an empty result instead of an error.
	IgnoreContentParserErrors bool

	// IgnoreMetadataSystemErrors treats a system failure on a metadata
	// request as an empty result instead of an error.
	IgnoreMetadataSystemErrors bool

	// IgnoreMetadataParserErrors treats a parser failure on a metadata
	// request as an empty result instead of an error.
	IgnoreMetadataParserErrors bool

	// SuccessCutoff expires cached successes resolved at or before it.
	// Zero disables success expiry.
	SuccessCutoff time.Time

	// FailureCutoff expires cached failures recorded at or before it.
	// Zero disables failure expiry.
	FailureCutoff time.Time

	// SharedCache engages the shared cache tier. The tier is currently a
	// stub, so enabling it without a real backend fails loudly on use.
	SharedCache bool

	// PersistentBackend names the configured blob-store backend for the
	// persistent tier. Empty disables the tier for this mime type.
	PersistentBackend string
}

// PersistentEnabled reports whether the persistent tier is enabled.
func (p Profile) PersistentEnabled() bool {
	return p.PersistentBackend != ""
}

// IgnoreSystemErrors reports whether system failures should be treated as
// empty results for the given facet (metadata or content).
func (p Profile) IgnoreSystemErrors(metadataFacet bool) bool {
	if metadataFacet {
		return p.IgnoreMetadataSystemErrors
	}
	return p.IgnoreContentSystemErrors
}

// IgnoreParserErrors reports whether parser failures should be treated as
// empty results for the given facet (metadata or content).
func (p Profile) IgnoreParserErrors(metadataFacet bool) bool {
	if metadataFacet {
		return p.IgnoreMetadataParserErrors
	}
	return p.IgnoreContentParserErrors
}
