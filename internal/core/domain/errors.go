package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Cache tiers and blob stores return it on a miss.
	ErrNotFound = errors.New("not found")

	// ErrNotImplemented indicates functionality is not yet available.
	// The shared cache tier returns it from every operation.
	ErrNotImplemented = errors.New("not implemented")

	// ErrSchemaMismatch indicates a persisted document carries a schema
	// version other than the one this build writes. Persisted entries are
	// never silently upgraded; a mismatch is a hard read failure.
	ErrSchemaMismatch = errors.New("cache schema version mismatch")

	// ErrKeyMismatch indicates persisted data or a recorded hash
	// disagrees with the content key it was addressed under. This points
	// at data corruption or path/content desynchronisation.
	ErrKeyMismatch = errors.New("content key mismatch")

	// ErrUnknownBackend indicates a profile names a persistent cache
	// backend that has not been configured.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// InvariantError reports a violated programming invariant, such as reading
// a value from an unresolved facet or re-hashing a path to a different key.
// It is not part of normal control flow: code panics with an InvariantError
// rather than returning it, and nothing should recover it except a process
// boundary that logs and aborts.
type InvariantError struct {
	Message string
}

// Error implements the error interface.
func (e InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

// invariant panics with an InvariantError built from the format and args.
func invariant(format string, args ...any) {
	panic(InvariantError{Message: fmt.Sprintf(format, args...)})
}
