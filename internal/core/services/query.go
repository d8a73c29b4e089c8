package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
	"github.com/custodia-labs/extracta/internal/logger"
)

// QueryCache orchestrates the three cache tiers and decides when a fresh
// analyzer call is needed. Tiers are consulted fastest first, each step
// starting from the previous step's result, so later tiers never overwrite
// a facet an earlier tier already resolved. Fresh analyzer results are
// reconciled back into every enabled tier before Resolve returns.
type QueryCache struct {
	hasher     driven.Hasher
	analyzer   driven.Analyzer
	local      driven.CacheTier
	shared     driven.CacheTier
	persistent map[string]driven.CacheTier
	now        func() time.Time
}

// NewQueryCache creates a query cache over the given collaborators.
// The shared tier may be nil when no shared backend exists; profiles that
// claim SharedCache then fail loudly on use. persistent maps backend
// identifiers (as named by Profile.PersistentBackend) to their tiers.
func NewQueryCache(
	hasher driven.Hasher,
	analyzer driven.Analyzer,
	local driven.CacheTier,
	shared driven.CacheTier,
	persistent map[string]driven.CacheTier,
) *QueryCache {
	return &QueryCache{
		hasher:     hasher,
		analyzer:   analyzer,
		local:      local,
		shared:     shared,
		persistent: persistent,
		now:        time.Now,
	}
}

// Metadata resolves the extracted metadata for the file at path.
func (q *QueryCache) Metadata(ctx context.Context, profile domain.Profile, path string) (domain.PropertyMap, error) {
	metadata, _, err := q.Resolve(ctx, profile, path, true)
	return metadata, err
}

// Text resolves the extracted text for the file at path.
func (q *QueryCache) Text(ctx context.Context, profile domain.Profile, path string) ([]string, error) {
	_, text, err := q.Resolve(ctx, profile, path, false)
	return text, err
}

// Resolve returns the analyzer's metadata and, unless metadataOnly, its
// extracted text for the file at path, consulting the cache tiers before
// falling back to a fresh analyzer call. Classified failures recorded for
// a requested facet are returned as the corresponding *domain.ParserError
// or *domain.SystemError; the per-facet ignore policy is the caller's to
// apply.
func (q *QueryCache) Resolve(ctx context.Context, profile domain.Profile, path string, metadataOnly bool) (domain.PropertyMap, []string, error) {
	entry, err := q.resolveEntry(ctx, profile, path, metadataOnly)
	if err != nil {
		return nil, nil, err
	}

	metadata, err := entry.Metadata()
	if err != nil {
		return nil, nil, err
	}
	if metadataOnly {
		return metadata, nil, nil
	}
	text, err := entry.Text()
	if err != nil {
		return nil, nil, err
	}
	return metadata, text, nil
}

// resolveEntry runs the tier walk and, on a miss, the analyzer call,
// returning an entry sufficient for the request shape.
func (q *QueryCache) resolveEntry(ctx context.Context, profile domain.Profile, path string, metadataOnly bool) (*domain.Entry, error) {
	key, err := q.hasher.KeyFor(path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}

	entry, err := q.localEntry(ctx, key)
	if err != nil {
		return nil, err
	}

	// Expiry demotions must be durable before anything else reads the
	// entry, so they are written through immediately.
	if expired := entry.Expire(profile.SuccessCutoff, profile.FailureCutoff); expired != entry {
		logger.Debug("cache entry for %s expired", key)
		entry = expired
		if err := q.writeThrough(ctx, profile, entry); err != nil {
			return nil, err
		}
	}

	entry, err = q.consultDeeperTiers(ctx, profile, entry, metadataOnly)
	if err != nil {
		return nil, err
	}

	if entry.IsSufficient(metadataOnly) {
		logger.Debug("cache hit for %s (metadataOnly=%t)", key, metadataOnly)
		return entry, nil
	}

	return q.queryAnalyzer(ctx, profile, path, entry, metadataOnly)
}

// localEntry fetches the current entry from the local tier, defaulting to
// an empty entry on a miss.
func (q *QueryCache) localEntry(ctx context.Context, key domain.ContentKey) (*domain.Entry, error) {
	entry, err := q.local.Get(ctx, key, false)
	switch {
	case err == nil:
		return entry, nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.NewEntry(key), nil
	default:
		return nil, fmt.Errorf("local cache tier: %w", err)
	}
}

// consultDeeperTiers upgrades a not-yet-sufficient entry from the shared
// tier and then the persistent tier, writing any upgrade back to the
// faster tiers as it goes.
func (q *QueryCache) consultDeeperTiers(ctx context.Context, profile domain.Profile, entry *domain.Entry, metadataOnly bool) (*domain.Entry, error) {
	if !entry.IsSufficient(metadataOnly) && profile.SharedCache {
		upgraded, err := q.consultTier(ctx, q.sharedTier(), "shared", entry, metadataOnly)
		if err != nil {
			return nil, err
		}
		if upgraded != entry {
			entry = upgraded
			if err := q.local.Put(ctx, entry); err != nil {
				return nil, fmt.Errorf("local cache tier: %w", err)
			}
		}
	}

	if !entry.IsSufficient(metadataOnly) && profile.PersistentEnabled() {
		tier, err := q.persistentTier(profile)
		if err != nil {
			return nil, err
		}
		upgraded, err := q.consultTier(ctx, tier, "persistent", entry, metadataOnly)
		if err != nil {
			return nil, err
		}
		if upgraded != entry {
			entry = upgraded
			if profile.SharedCache {
				if err := q.sharedTier().Put(ctx, entry); err != nil {
					return nil, fmt.Errorf("shared cache tier: %w", err)
				}
			}
			if err := q.local.Put(ctx, entry); err != nil {
				return nil, fmt.Errorf("local cache tier: %w", err)
			}
		}
	}

	return entry, nil
}

// consultTier reads a deeper tier and folds whatever it holds into the
// entry. A miss contributes nothing; resolved facets of entry keep
// authority over whatever the deeper tier returns.
func (q *QueryCache) consultTier(ctx context.Context, tier driven.CacheTier, name string, entry *domain.Entry, metadataOnly bool) (*domain.Entry, error) {
	other, err := tier.Get(ctx, entry.Key(), metadataOnly)
	switch {
	case err == nil:
		return entry.ResolveFromOther(other), nil
	case errors.Is(err, domain.ErrNotFound):
		return entry, nil
	default:
		return nil, fmt.Errorf("%s cache tier: %w", name, err)
	}
}

// queryAnalyzer performs the fresh analyzer call for a cache miss, folds
// the outcome into the entry, and writes the result through all tiers.
func (q *QueryCache) queryAnalyzer(ctx context.Context, profile domain.Profile, path string, entry *domain.Entry, metadataOnly bool) (*domain.Entry, error) {
	// A text facet that is already resolved, even as a failure, is never
	// re-requested: the call is upgraded to metadata-only.
	if !metadataOnly && entry.TextState() != domain.FacetUnknown {
		logger.Debug("text already resolved for %s, upgrading to metadata-only", entry.Key())
		metadataOnly = true
	}

	entry, err := q.queryOnce(ctx, profile, path, entry, metadataOnly)
	if err != nil {
		return nil, err
	}

	// A text+metadata call can fail specifically on text extraction,
	// leaving metadata unresolved. The service may still be able to
	// answer a metadata-only question about the same document, so that
	// is asked explicitly rather than conflating "text failed" with
	// "nothing is known".
	if entry.MetadataState() == domain.FacetUnknown {
		logger.Debug("metadata still unresolved for %s, issuing metadata-only call", entry.Key())
		entry, err = q.queryOnce(ctx, profile, path, entry, true)
		if err != nil {
			return nil, err
		}
		if entry.MetadataState() == domain.FacetUnknown {
			panic(domain.InvariantError{Message: fmt.Sprintf("metadata unresolved for %q after metadata-only analyzer call", entry.Key())})
		}
	}

	if err := q.writeThrough(ctx, profile, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// queryOnce performs a single analyzer call and folds the outcome into the
// entry. System failures propagate without touching the entry or any
// tier; successes and parser failures are folded with a fresh UTC
// timestamp.
func (q *QueryCache) queryOnce(ctx context.Context, profile domain.Profile, path string, entry *domain.Entry, metadataOnly bool) (*domain.Entry, error) {
	raw, err := q.analyzer.Query(ctx, profile, path, metadataOnly)
	now := q.now().UTC()

	var parserErr *domain.ParserError
	switch {
	case err == nil:
		return entry.UpdateFromSuccess(now, metadataOnly, raw), nil
	case errors.As(err, &parserErr):
		logger.Info("analyzer parser failure for %s: %v", entry.Key(), parserErr)
		return entry.UpdateFromFailure(now, metadataOnly, parserErr), nil
	default:
		// System failures and anything unclassified say nothing about
		// the content and are never cached.
		return nil, err
	}
}

// writeThrough stores the entry in every tier this profile enables, from
// the local tier outward. Writes are synchronous: a successful return
// means all enabled tiers hold an entry at least this resolved.
func (q *QueryCache) writeThrough(ctx context.Context, profile domain.Profile, entry *domain.Entry) error {
	if err := q.local.Put(ctx, entry); err != nil {
		return fmt.Errorf("local cache tier: %w", err)
	}
	if profile.SharedCache {
		if err := q.sharedTier().Put(ctx, entry); err != nil {
			return fmt.Errorf("shared cache tier: %w", err)
		}
	}
	if profile.PersistentEnabled() {
		tier, err := q.persistentTier(profile)
		if err != nil {
			return err
		}
		if err := tier.Put(ctx, entry); err != nil {
			return fmt.Errorf("persistent cache tier: %w", err)
		}
	}
	return nil
}

// sharedTier returns the shared tier, substituting an unusable tier when
// none was wired so that profiles claiming SharedCache fail on use rather
// than silently skipping the tier they asked for.
func (q *QueryCache) sharedTier() driven.CacheTier {
	if q.shared != nil {
		return q.shared
	}
	return unusableTier{}
}

// persistentTier looks up the tier for the profile's configured backend.
func (q *QueryCache) persistentTier(profile domain.Profile) (driven.CacheTier, error) {
	tier, ok := q.persistent[profile.PersistentBackend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, profile.PersistentBackend)
	}
	return tier, nil
}

// unusableTier stands in for a tier that was enabled but never wired.
type unusableTier struct{}

func (unusableTier) Get(context.Context, domain.ContentKey, bool) (*domain.Entry, error) {
	return nil, fmt.Errorf("shared cache tier: %w", domain.ErrNotImplemented)
}

func (unusableTier) Put(context.Context, *domain.Entry) error {
	return fmt.Errorf("shared cache tier: %w", domain.ErrNotImplemented)
}
