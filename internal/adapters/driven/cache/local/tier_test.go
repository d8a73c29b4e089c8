package local

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extracta/internal/core/domain"
)

func entryFor(key domain.ContentKey) *domain.Entry {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return domain.NewEntry(key).UpdateFromSuccess(now, true, domain.PropertyMap{"dc:title": "Report"})
}

func TestTier_PutGet(t *testing.T) {
	tier, err := NewTier(4)
	require.NoError(t, err)

	entry := entryFor("abc123")
	require.NoError(t, tier.Put(context.Background(), entry))

	got, err := tier.Get(context.Background(), "abc123", false)
	require.NoError(t, err)
	assert.Same(t, entry, got, "entries are immutable and cached by pointer")
}

func TestTier_MissIsNotFound(t *testing.T) {
	tier, err := NewTier(4)
	require.NoError(t, err)

	_, err = tier.Get(context.Background(), "missing", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTier_PutReplacesExisting(t *testing.T) {
	tier, err := NewTier(4)
	require.NoError(t, err)

	first := entryFor("abc123")
	second := first.UpdateFromFailure(time.Now(), false, &domain.ParserError{Message: "encrypted"})
	require.NoError(t, tier.Put(context.Background(), first))
	require.NoError(t, tier.Put(context.Background(), second))

	got, err := tier.Get(context.Background(), "abc123", false)
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, 1, tier.Len())
}

func TestTier_EvictsLeastRecentlyUsed(t *testing.T) {
	tier, err := NewTier(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, tier.Put(ctx, entryFor("aa-one")))
	require.NoError(t, tier.Put(ctx, entryFor("bb-two")))

	// Touch the older entry so the newer one becomes the eviction victim.
	_, err = tier.Get(ctx, "aa-one", false)
	require.NoError(t, err)

	require.NoError(t, tier.Put(ctx, entryFor("cc-three")))

	_, err = tier.Get(ctx, "bb-two", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = tier.Get(ctx, "aa-one", false)
	assert.NoError(t, err)
	assert.Equal(t, 2, tier.Len())
}

func TestNewTier_DefaultSize(t *testing.T) {
	tier, err := NewTier(0)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < DefaultSize+10; i++ {
		key := domain.ContentKey(fmt.Sprintf("key-%04d", i))
		require.NoError(t, tier.Put(ctx, entryFor(key)))
	}
	assert.Equal(t, DefaultSize, tier.Len())
}
