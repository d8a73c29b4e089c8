// Package hasher computes content-addressing keys for local files.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
)

// Ensure Hasher implements the interface.
var _ driven.Hasher = (*Hasher)(nil)

// Default size for the buffer used when hashing files.
const defaultBufferSize = 32 * 1024 // 32KB

// bufferPool is a pool of byte slices used for file I/O during hashing.
var bufferPool = sync.Pool{
	New: func() any {
		buffer := make([]byte, defaultBufferSize)
		return &buffer
	},
}

// HashFunc defines a function that creates a new hash.Hash instance.
type HashFunc func() hash.Hash

// Option defines a function that configures a Hasher.
type Option func(*Hasher)

// WithHashFunc replaces the hash algorithm. The default is SHA-256;
// XXHash64 trades collision margin for speed in trusted local-only
// deployments. All processes sharing a persistent cache backend must
// agree on the algorithm, or identical content maps to different keys.
func WithHashFunc(fn HashFunc) Option {
	return func(h *Hasher) {
		h.hashFunc = fn
	}
}

// XXHash64 is a HashFunc for the xxhash64 algorithm.
func XXHash64() hash.Hash {
	return xxhash.New()
}

// Hasher computes content keys and memoises them per path for the life
// of the process, so a path is hashed at most once.
type Hasher struct {
	mu       sync.Mutex
	hashFunc HashFunc
	keys     map[string]domain.ContentKey
}

// New creates a Hasher.
func New(options ...Option) *Hasher {
	h := &Hasher{
		hashFunc: sha256.New,
		keys:     make(map[string]domain.ContentKey),
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// KeyFor returns the content key for the file at path, computing and
// memoising it on first use.
func (h *Hasher) KeyFor(path string) (domain.ContentKey, error) {
	h.mu.Lock()
	key, ok := h.keys[path]
	h.mu.Unlock()
	if ok {
		return key, nil
	}

	key, err := h.hashPath(path)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	h.keys[path] = key
	h.mu.Unlock()
	return key, nil
}

// Record registers an externally supplied key for a path. A key already
// held for the path must match exactly: a mismatch means the path and
// its content have desynchronised, which is fatal.
func (h *Hasher) Record(path string, key domain.ContentKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.keys[path]; ok && existing != key {
		panic(domain.InvariantError{
			Message: fmt.Sprintf("path %q recorded with key %q but already holds %q", path, key, existing),
		})
	}
	h.keys[path] = key
}

// hashPath hashes the file content at path.
func (h *Hasher) hashPath(path string) (domain.ContentKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	digest := h.hashFunc()
	if _, err := io.CopyBuffer(digest, f, buffer); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return domain.ContentKey(hex.EncodeToString(digest.Sum(nil))), nil
}
