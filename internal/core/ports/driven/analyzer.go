package driven

import (
	"context"

	"github.com/custodia-labs/extracta/internal/core/domain"
)

// Analyzer performs one query cycle against the external content-analysis
// service for a single file.
//
// Implementations handle protocol-level retry internally: transient
// conditions (connection refused, 5xx) are retried up to their configured
// bound and never surface unless retries are exhausted.
type Analyzer interface {
	// Query uploads the file at path and returns the raw property bag the
	// analyzer produced, including the distinguished text property unless
	// metadataOnly was set.
	//
	// Errors are classified: *domain.SystemError when the service could
	// not be used at all (never cacheable), *domain.ParserError when the
	// service examined this document and rejected or timed out on it
	// (cacheable per content key).
	Query(ctx context.Context, profile domain.Profile, path string, metadataOnly bool) (domain.PropertyMap, error)
}
