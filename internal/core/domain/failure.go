package domain

import (
	"errors"
	"time"
)

// SystemError means the analyzer service itself could not be used: it was
// unreachable, retries were exhausted, or the local file could not even be
// opened for upload. A SystemError says nothing about the content, so it is
// never cached.
type SystemError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SystemError) Error() string {
	if e.Err != nil {
		return "analyzer system failure: " + e.Message + ": " + e.Err.Error()
	}
	return "analyzer system failure: " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *SystemError) Unwrap() error {
	return e.Err
}

// ParserError means the analyzer examined this specific document and could
// not process it, or timed out on it. That is a durable fact about the
// content, so parser errors are cached per content key.
type ParserError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	if e.Err != nil {
		return "analyzer parser failure: " + e.Message + ": " + e.Err.Error()
	}
	return "analyzer parser failure: " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *ParserError) Unwrap() error {
	return e.Err
}

// IsSystemError reports whether err is classified as a system failure.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// IsParserError reports whether err is classified as a parser failure.
func IsParserError(err error) bool {
	var pe *ParserError
	return errors.As(err, &pe)
}

// CachedFailure wraps a parser failure together with the UTC time it was
// recorded and the kind of request that produced it. It exists so the cache
// can avoid re-querying a service that is known, as of a point in time, to
// fail on this content.
type CachedFailure struct {
	// Failure is the classified parser failure. Only parser failures are
	// ever cached; system failures never reach a CachedFailure.
	Failure *ParserError

	// RecordedAt is the UTC time the failure was folded into the entry.
	RecordedAt time.Time

	// MetadataOnly reports whether the failing request asked for
	// metadata alone rather than metadata plus text.
	MetadataOnly bool
}
