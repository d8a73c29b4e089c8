// Package cli provides the command-line interface for Extracta.
//
// The CLI stands in for the host platform's dispatch layer: it resolves a
// profile for a mime type, asks the query cache for metadata and text,
// and applies the profile's ignore-error policy to the outcome.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/extracta/internal/adapters/driven/analyzer/tika"
	"github.com/custodia-labs/extracta/internal/adapters/driven/blobstore/fs"
	"github.com/custodia-labs/extracta/internal/adapters/driven/blobstore/sqlite"
	"github.com/custodia-labs/extracta/internal/adapters/driven/cache/local"
	"github.com/custodia-labs/extracta/internal/adapters/driven/cache/persistent"
	"github.com/custodia-labs/extracta/internal/adapters/driven/cache/shared"
	"github.com/custodia-labs/extracta/internal/adapters/driven/config/file"
	"github.com/custodia-labs/extracta/internal/adapters/driven/hasher"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
	"github.com/custodia-labs/extracta/internal/core/services"
	"github.com/custodia-labs/extracta/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "extracta",
	Short: "Extract text and metadata from files via a content-analysis service",
	Long: `Extracta delegates file analysis to an external content-analysis
service and caches the responses across three tiers: an in-process LRU,
an optional shared cache, and a persistent content-addressed blob store.

Examples:
  # Extract text and metadata from a PDF
  extracta extract report.pdf --mime application/pdf

  # Metadata only, without fetching bulk text
  extracta extract report.pdf --mime application/pdf --metadata-only

  # Print the content key for a file
  extracta hash report.pdf`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(flagVerbose)
	},
}

// Root flags.
var (
	flagVerbose     bool
	flagConfig      string
	flagAnalyzerURL string
	flagLocalSize   int
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.extracta/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagAnalyzerURL, "analyzer-url", tika.DefaultBaseURL, "analyzer service base URL")
	rootCmd.PersistentFlags().IntVar(&flagLocalSize, "local-cache-size", local.DefaultSize, "local cache tier entry bound")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(hashCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// stack bundles the wired collaborators for one invocation.
type stack struct {
	profiles *file.ProfileStore
	queries  *services.QueryCache
	hasher   driven.Hasher
	closers  []func() error
}

// close releases backend resources.
func (s *stack) close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			logger.Warn("closing backend: %v", err)
		}
	}
}

// buildStack wires profile store, hasher, tiers, analyzer and query cache
// from the flags and the config file.
func buildStack() (*stack, error) {
	configPath := flagConfig
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configPath = filepath.Join(home, ".extracta", "config.toml")
	}

	profiles, err := file.NewProfileStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	localTier, err := local.NewTier(flagLocalSize)
	if err != nil {
		return nil, err
	}

	s := &stack{profiles: profiles, hasher: hasher.New()}

	tiers := make(map[string]driven.CacheTier)
	for name, backend := range profiles.Backends() {
		store, err := openBackend(backend)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("backend %q: %w", name, err)
		}
		s.closers = append(s.closers, store.Close)
		tiers[name] = persistent.NewTier(store)
	}

	analyzer := tika.NewClient(tika.Config{BaseURL: flagAnalyzerURL})

	// No shared backend exists yet; profiles claiming the shared tier
	// fail on first use rather than silently skipping it.
	s.queries = services.NewQueryCache(s.hasher, analyzer, localTier, shared.NewStub(), tiers)
	return s, nil
}

// openBackend creates the blob store for a backend config.
func openBackend(backend file.BackendConfig) (driven.BlobStore, error) {
	switch backend.Driver {
	case "fs":
		return fs.NewStore(backend.Path)
	case "sqlite":
		return sqlite.NewStore(backend.Path)
	default:
		return nil, fmt.Errorf("unknown driver %q", backend.Driver)
	}
}
