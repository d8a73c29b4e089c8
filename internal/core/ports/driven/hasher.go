package driven

import "github.com/custodia-labs/extracta/internal/core/domain"

// Hasher computes content-addressing keys for local files.
type Hasher interface {
	// KeyFor returns the content key for the file at path, computed from
	// the file bytes. Keys are memoised per path for the life of the
	// process, so a path is hashed at most once.
	KeyFor(path string) (domain.ContentKey, error)

	// Record registers an externally supplied key for a path, so later
	// KeyFor calls return it without rehashing. Recording a key that
	// disagrees with one already held for the path panics with a
	// domain.InvariantError: it means path and content have desynchronised.
	Record(path string, key domain.ContentKey)
}
