// Package file provides the TOML-backed profile store.
//
// The configuration file names blob-store backends, defines handling
// labels, and maps mime types onto labels:
//
//	[backends.archive]
//	driver = "fs"
//	path = "/var/cache/extracta"
//
//	[labels.default]
//	metadata-merge = "append"
//
//	[labels.ocr]
//	inherit = "default"
//	ocr-allowed = true
//	ocr-languages = "eng+deu"
//	backend = "archive"
//
//	[profiles]
//	"application/pdf" = "ocr"
//
// A label may inherit from another label; resolution walks the chain and
// fills unset fields from ancestors, nearer labels winning.
package file

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// DefaultLabel is the label an unmapped mime type resolves through when
// it exists.
const DefaultLabel = "default"

// maxInheritDepth bounds inheritance chains; anything longer is treated
// as a configuration error even without a strict cycle.
const maxInheritDepth = 16

// BackendConfig describes one configured blob-store backend.
type BackendConfig struct {
	// Driver selects the implementation: "fs" or "sqlite".
	Driver string `toml:"driver"`

	// Path is the root directory (fs) or database file (sqlite).
	Path string `toml:"path"`
}

// labelSection is one [labels.*] table. Every field is optional so that
// inheritance can distinguish "unset" from an explicit value.
type labelSection struct {
	Inherit                    *string    `toml:"inherit"`
	Handler                    *string    `toml:"handler"`
	OCRAllowed                 *bool      `toml:"ocr-allowed"`
	OCRLanguages               *string    `toml:"ocr-languages"`
	ContentMerge               *string    `toml:"content-merge"`
	ContentComposition         *string    `toml:"content-composition"`
	MetadataMerge              *string    `toml:"metadata-merge"`
	IgnoreContentSystemErrors  *bool      `toml:"ignore-content-system-errors"`
	IgnoreContentParserErrors  *bool      `toml:"ignore-content-parser-errors"`
	IgnoreMetadataSystemErrors *bool      `toml:"ignore-metadata-system-errors"`
	IgnoreMetadataParserErrors *bool      `toml:"ignore-metadata-parser-errors"`
	SuccessCutoff              *time.Time `toml:"success-cutoff"`
	FailureCutoff              *time.Time `toml:"failure-cutoff"`
	Backend                    *string    `toml:"backend"`
	SharedCache                *bool      `toml:"shared-cache"`
}

// configFile is the full TOML document.
type configFile struct {
	Backends map[string]BackendConfig `toml:"backends"`
	Labels   map[string]labelSection  `toml:"labels"`
	Profiles map[string]string        `toml:"profiles"`
}

// ProfileStore resolves per-mime-type profiles from a TOML file.
type ProfileStore struct {
	mu     sync.RWMutex
	path   string
	config configFile
}

// NewProfileStore loads the configuration at path.
func NewProfileStore(path string) (*ProfileStore, error) {
	s := &ProfileStore{path: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and parses the configuration file. A missing file yields an
// empty configuration: every mime type resolves to the zero profile.
func (s *ProfileStore) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.config = configFile{}
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	var config configFile
	if err := toml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	s.mu.Lock()
	s.config = config
	s.mu.Unlock()
	return nil
}

// Backends returns the configured blob-store backends.
func (s *ProfileStore) Backends() map[string]BackendConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]BackendConfig, len(s.config.Backends))
	for name, backend := range s.config.Backends {
		out[name] = backend
	}
	return out
}

// Profile resolves the profile for a mime type. Unmapped mime types fall
// back to the default label when one exists, otherwise to the zero
// profile.
func (s *ProfileStore) Profile(mime string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile := domain.Profile{Mime: mime}

	label, mapped := s.config.Profiles[mime]
	if !mapped {
		if _, ok := s.config.Labels[DefaultLabel]; !ok {
			return profile, nil
		}
		label = DefaultLabel
	}

	chain, err := s.labelChain(label)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("resolving profile for %s: %w", mime, err)
	}

	// Apply from the root ancestor down, so nearer labels win.
	for i := len(chain) - 1; i >= 0; i-- {
		if err := applyLabel(&profile, chain[i]); err != nil {
			return domain.Profile{}, fmt.Errorf("resolving profile for %s: %w", mime, err)
		}
	}
	return profile, nil
}

// labelChain returns the label and its ancestors, nearest first.
func (s *ProfileStore) labelChain(label string) ([]labelSection, error) {
	var chain []labelSection
	visited := make(map[string]bool)

	for label != "" {
		if visited[label] {
			return nil, fmt.Errorf("label inheritance cycle at %q", label)
		}
		if len(chain) >= maxInheritDepth {
			return nil, fmt.Errorf("label inheritance deeper than %d at %q", maxInheritDepth, label)
		}
		visited[label] = true

		section, ok := s.config.Labels[label]
		if !ok {
			return nil, fmt.Errorf("unknown label %q", label)
		}
		chain = append(chain, section)

		if section.Inherit == nil {
			break
		}
		label = *section.Inherit
	}
	return chain, nil
}

// applyLabel overlays a label's set fields onto the profile.
func applyLabel(profile *domain.Profile, section labelSection) error {
	if section.Handler != nil {
		handler, err := parseHandler(*section.Handler)
		if err != nil {
			return err
		}
		profile.Handler = handler
	}
	if section.OCRAllowed != nil {
		profile.OCRAllowed = *section.OCRAllowed
	}
	if section.OCRLanguages != nil {
		profile.OCRLanguages = *section.OCRLanguages
	}
	if section.ContentMerge != nil {
		merge, err := parseMerge(*section.ContentMerge)
		if err != nil {
			return err
		}
		profile.ContentMerge = merge
	}
	if section.ContentComposition != nil {
		composition, err := parseComposition(*section.ContentComposition)
		if err != nil {
			return err
		}
		profile.ContentComposition = composition
	}
	if section.MetadataMerge != nil {
		merge, err := parseMerge(*section.MetadataMerge)
		if err != nil {
			return err
		}
		profile.MetadataMerge = merge
	}
	if section.IgnoreContentSystemErrors != nil {
		profile.IgnoreContentSystemErrors = *section.IgnoreContentSystemErrors
	}
	if section.IgnoreContentParserErrors != nil {
		profile.IgnoreContentParserErrors = *section.IgnoreContentParserErrors
	}
	if section.IgnoreMetadataSystemErrors != nil {
		profile.IgnoreMetadataSystemErrors = *section.IgnoreMetadataSystemErrors
	}
	if section.IgnoreMetadataParserErrors != nil {
		profile.IgnoreMetadataParserErrors = *section.IgnoreMetadataParserErrors
	}
	if section.SuccessCutoff != nil {
		profile.SuccessCutoff = section.SuccessCutoff.UTC()
	}
	if section.FailureCutoff != nil {
		profile.FailureCutoff = section.FailureCutoff.UTC()
	}
	if section.Backend != nil {
		profile.PersistentBackend = *section.Backend
	}
	if section.SharedCache != nil {
		profile.SharedCache = *section.SharedCache
	}
	return nil
}

func parseHandler(value string) (domain.HandlerStrategy, error) {
	switch value {
	case "solo":
		return domain.HandlerSolo, nil
	case "override":
		return domain.HandlerOverride, nil
	case "wrap":
		return domain.HandlerWrap, nil
	default:
		return 0, fmt.Errorf("unknown handler strategy %q", value)
	}
}

func parseMerge(value string) (domain.MergeStrategy, error) {
	switch value {
	case "replace":
		return domain.MergeReplace, nil
	case "append":
		return domain.MergeAppend, nil
	case "prepend":
		return domain.MergePrepend, nil
	case "union":
		return domain.MergeUnion, nil
	default:
		return 0, fmt.Errorf("unknown merge strategy %q", value)
	}
}

func parseComposition(value string) (domain.ContentComposition, error) {
	switch value {
	case "text":
		return domain.ComposeText, nil
	case "metadata":
		return domain.ComposeMetadata, nil
	case "both":
		return domain.ComposeBoth, nil
	default:
		return 0, fmt.Errorf("unknown content composition %q", value)
	}
}
