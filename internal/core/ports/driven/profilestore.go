package driven

import "github.com/custodia-labs/extracta/internal/core/domain"

// ProfileStore resolves per-mime-type profiles from configuration.
type ProfileStore interface {
	// Profile returns the resolved profile for a mime type, walking any
	// configured inheritance chain. Unconfigured mime types resolve to
	// the default profile.
	Profile(mime string) (domain.Profile, error)
}
