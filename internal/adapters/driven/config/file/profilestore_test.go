package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extracta/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProfileStore_MissingFileYieldsZeroProfiles(t *testing.T) {
	store, err := NewProfileStore(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	profile, err := store.Profile("application/pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{Mime: "application/pdf"}, profile)
	assert.Empty(t, store.Backends())
}

func TestProfileStore_MalformedFile(t *testing.T) {
	path := writeConfig(t, `[labels.default`)

	_, err := NewProfileStore(path)
	assert.Error(t, err)
}

func TestProfileStore_MappedMime(t *testing.T) {
	path := writeConfig(t, `
[labels.pdf]
handler = "wrap"
ocr-allowed = true
ocr-languages = "eng+deu"
content-merge = "append"
content-composition = "both"
metadata-merge = "union"
ignore-content-parser-errors = true
backend = "archive"
shared-cache = true

[profiles]
"application/pdf" = "pdf"
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	profile, err := store.Profile("application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", profile.Mime)
	assert.Equal(t, domain.HandlerWrap, profile.Handler)
	assert.True(t, profile.OCRAllowed)
	assert.Equal(t, "eng+deu", profile.OCRLanguages)
	assert.Equal(t, domain.MergeAppend, profile.ContentMerge)
	assert.Equal(t, domain.ComposeBoth, profile.ContentComposition)
	assert.Equal(t, domain.MergeUnion, profile.MetadataMerge)
	assert.True(t, profile.IgnoreContentParserErrors)
	assert.False(t, profile.IgnoreContentSystemErrors)
	assert.Equal(t, "archive", profile.PersistentBackend)
	assert.True(t, profile.SharedCache)
	assert.True(t, profile.PersistentEnabled())
}

func TestProfileStore_UnmappedMimeFallsBackToDefaultLabel(t *testing.T) {
	path := writeConfig(t, `
[labels.default]
metadata-merge = "append"
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	profile, err := store.Profile("text/plain")
	require.NoError(t, err)
	assert.Equal(t, domain.MergeAppend, profile.MetadataMerge)
}

func TestProfileStore_Inheritance(t *testing.T) {
	path := writeConfig(t, `
[labels.default]
metadata-merge = "append"
ocr-allowed = false

[labels.ocr]
inherit = "default"
ocr-allowed = true

[profiles]
"image/png" = "ocr"
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	profile, err := store.Profile("image/png")
	require.NoError(t, err)

	// Nearer label wins; unset fields fill from the ancestor.
	assert.True(t, profile.OCRAllowed)
	assert.Equal(t, domain.MergeAppend, profile.MetadataMerge)
}

func TestProfileStore_InheritanceCycle(t *testing.T) {
	path := writeConfig(t, `
[labels.a]
inherit = "b"

[labels.b]
inherit = "a"

[profiles]
"text/plain" = "a"
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	_, err = store.Profile("text/plain")
	assert.ErrorContains(t, err, "cycle")
}

func TestProfileStore_UnknownLabel(t *testing.T) {
	path := writeConfig(t, `
[profiles]
"text/plain" = "nonexistent"
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	_, err = store.Profile("text/plain")
	assert.ErrorContains(t, err, "unknown label")
}

func TestProfileStore_InvalidEnumValue(t *testing.T) {
	path := writeConfig(t, `
[labels.bad]
content-merge = "sideways"

[profiles]
"text/plain" = "bad"
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	_, err = store.Profile("text/plain")
	assert.ErrorContains(t, err, "unknown merge strategy")
}

func TestProfileStore_Cutoffs(t *testing.T) {
	path := writeConfig(t, `
[labels.default]
success-cutoff = 2026-01-01T00:00:00Z
failure-cutoff = 2026-02-01T12:00:00+01:00
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	profile, err := store.Profile("text/plain")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), profile.SuccessCutoff)
	assert.Equal(t, time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC), profile.FailureCutoff)
}

func TestProfileStore_Backends(t *testing.T) {
	path := writeConfig(t, `
[backends.archive]
driver = "fs"
path = "/var/cache/extracta"

[backends.db]
driver = "sqlite"
path = "/var/cache/extracta.db"
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	backends := store.Backends()
	assert.Equal(t, BackendConfig{Driver: "fs", Path: "/var/cache/extracta"}, backends["archive"])
	assert.Equal(t, BackendConfig{Driver: "sqlite", Path: "/var/cache/extracta.db"}, backends["db"])
}

func TestProfileStore_ReloadPicksUpChanges(t *testing.T) {
	path := writeConfig(t, `
[labels.default]
ocr-allowed = false
`)

	store, err := NewProfileStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`
[labels.default]
ocr-allowed = true
`), 0o644))
	require.NoError(t, store.Load())

	profile, err := store.Profile("text/plain")
	require.NoError(t, err)
	assert.True(t, profile.OCRAllowed)
}
