package persistent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extracta/internal/adapters/driven/blobstore/memory"
	"github.com/custodia-labs/extracta/internal/core/domain"
)

const testKey = domain.ContentKey("abc123")

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func fullEntry() *domain.Entry {
	return domain.NewEntry(testKey).UpdateFromSuccess(testNow, false, domain.PropertyMap{
		"dc:title":          "Report",
		domain.TextProperty: "body text",
	})
}

func TestTier_RoundTrip(t *testing.T) {
	store := memory.NewStore()
	tier := NewTier(store)
	ctx := context.Background()

	require.NoError(t, tier.Put(ctx, fullEntry()))

	got, err := tier.Get(ctx, testKey, false)
	require.NoError(t, err)

	assert.Equal(t, domain.FacetSuccess, got.MetadataState())
	assert.Equal(t, domain.FacetSuccess, got.TextState())

	metadata, err := got.Metadata()
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyMap{"dc:title": "Report"}, metadata)

	text, err := got.Text()
	require.NoError(t, err)
	assert.Equal(t, []string{"body text"}, text)

	resolvedAt, ok := got.ResolvedAt()
	require.True(t, ok)
	assert.Equal(t, testNow, resolvedAt)
}

func TestTier_RoundTripFailures(t *testing.T) {
	store := memory.NewStore()
	tier := NewTier(store)
	ctx := context.Background()

	entry := domain.NewEntry(testKey).
		UpdateFromFailure(testNow, false, &domain.ParserError{Message: "encrypted"}).
		UpdateFromSuccess(testNow, true, domain.PropertyMap{"dc:title": "Report"})
	require.NoError(t, tier.Put(ctx, entry))

	got, err := tier.Get(ctx, testKey, false)
	require.NoError(t, err)

	assert.Equal(t, domain.FacetSuccess, got.MetadataState())
	assert.Equal(t, domain.FacetFailure, got.TextState())

	_, err = got.Text()
	var parserErr *domain.ParserError
	require.ErrorAs(t, err, &parserErr)
	assert.Equal(t, "encrypted", parserErr.Message)
}

func TestTier_SplitsBaseAndContentsBlobs(t *testing.T) {
	store := memory.NewStore()
	tier := NewTier(store)
	ctx := context.Background()

	require.NoError(t, tier.Put(ctx, fullEntry()))
	assert.Equal(t, 2, store.Len())

	base, err := store.Get(ctx, "a/ab/abc123.base.json")
	require.NoError(t, err)
	assert.NotContains(t, string(base), "body text", "bulk text must live in the contents blob alone")

	_, err = store.Get(ctx, "a/ab/abc123.contents.json")
	require.NoError(t, err)
}

func TestTier_MetadataOnlySkipsContentsBlob(t *testing.T) {
	store := memory.NewStore()
	tier := NewTier(store)
	ctx := context.Background()

	require.NoError(t, tier.Put(ctx, fullEntry()))
	store.Delete("a/ab/abc123.contents.json")

	got, err := tier.Get(ctx, testKey, true)
	require.NoError(t, err)

	assert.Equal(t, domain.FacetSuccess, got.MetadataState())
	assert.Equal(t, domain.FacetUnknown, got.TextState())
}

func TestTier_MissingContentsBlobToleratedOnFullRead(t *testing.T) {
	store := memory.NewStore()
	tier := NewTier(store)
	ctx := context.Background()

	require.NoError(t, tier.Put(ctx, fullEntry()))
	store.Delete("a/ab/abc123.contents.json")

	got, err := tier.Get(ctx, testKey, false)
	require.NoError(t, err)

	assert.Equal(t, domain.FacetSuccess, got.MetadataState())
	assert.Equal(t, domain.FacetUnknown, got.TextState())
}

func TestTier_MissIsNotFound(t *testing.T) {
	tier := NewTier(memory.NewStore())

	_, err := tier.Get(context.Background(), testKey, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTier_SchemaMismatchIsHardFailure(t *testing.T) {
	store := memory.NewStore()
	tier := NewTier(store)
	ctx := context.Background()

	require.NoError(t, tier.Put(ctx, fullEntry()))

	base, err := store.Get(ctx, "a/ab/abc123.base.json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(base, &doc))
	doc["schema"] = SchemaVersion + 1
	tampered, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "a/ab/abc123.base.json", tampered))

	_, err = tier.Get(ctx, testKey, false)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestTier_KeyMismatchIsHardFailure(t *testing.T) {
	store := memory.NewStore()
	tier := NewTier(store)
	ctx := context.Background()

	require.NoError(t, tier.Put(ctx, fullEntry()))

	base, err := store.Get(ctx, "a/ab/abc123.base.json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(base, &doc))
	doc["key"] = "somethingelse"
	tampered, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "a/ab/abc123.base.json", tampered))

	_, err = tier.Get(ctx, testKey, false)
	assert.ErrorIs(t, err, domain.ErrKeyMismatch)
}

func TestTier_RejectsUnaddressableKey(t *testing.T) {
	tier := NewTier(memory.NewStore())

	_, err := tier.Get(context.Background(), "x", false)
	assert.Error(t, err)

	err = tier.Put(context.Background(), domain.NewEntry("x"))
	assert.Error(t, err)
}

func TestTier_UnknownEntryRoundTrips(t *testing.T) {
	store := memory.NewStore()
	tier := NewTier(store)
	ctx := context.Background()

	require.NoError(t, tier.Put(ctx, domain.NewEntry(testKey)))
	assert.Equal(t, 1, store.Len(), "no contents blob for an entry without text")

	got, err := tier.Get(ctx, testKey, false)
	require.NoError(t, err)
	assert.Equal(t, domain.FacetUnknown, got.MetadataState())
	assert.Equal(t, domain.FacetUnknown, got.TextState())
	_, ok := got.ResolvedAt()
	assert.False(t, ok)
}
