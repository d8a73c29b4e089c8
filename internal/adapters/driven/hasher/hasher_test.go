package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extracta/internal/core/domain"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestKeyFor_SHA256ByDefault(t *testing.T) {
	path := writeFile(t, "hello world")

	key, err := New().KeyFor(path)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("hello world"))
	assert.Equal(t, domain.ContentKey(hex.EncodeToString(sum[:])), key)
}

func TestKeyFor_MemoisesPerPath(t *testing.T) {
	path := writeFile(t, "original")

	h := New()
	first, err := h.KeyFor(path)
	require.NoError(t, err)

	// Rewriting the file behind the memo does not change the key: the
	// path is trusted to be stable for the life of the process.
	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))

	second, err := h.KeyFor(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestKeyFor_MissingFile(t *testing.T) {
	_, err := New().KeyFor("/no/such/file")
	assert.Error(t, err)
}

func TestKeyFor_XXHashOption(t *testing.T) {
	path := writeFile(t, "hello world")

	key, err := New(WithHashFunc(XXHash64)).KeyFor(path)
	require.NoError(t, err)

	assert.Len(t, key.String(), 16, "xxhash64 digests are 8 bytes hex-encoded")

	sum := sha256.Sum256([]byte("hello world"))
	assert.NotEqual(t, domain.ContentKey(hex.EncodeToString(sum[:])), key)
}

func TestRecord_SeedsTheMemo(t *testing.T) {
	h := New()
	h.Record("/doc.txt", "abc123")

	key, err := h.KeyFor("/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentKey("abc123"), key)
}

func TestRecord_MatchingKeyIsIdempotent(t *testing.T) {
	h := New()
	h.Record("/doc.txt", "abc123")
	assert.NotPanics(t, func() { h.Record("/doc.txt", "abc123") })
}

func TestRecord_MismatchPanics(t *testing.T) {
	h := New()
	h.Record("/doc.txt", "abc123")

	assert.Panics(t, func() { h.Record("/doc.txt", "def456") })
}
