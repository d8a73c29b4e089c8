package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/services"
	"github.com/custodia-labs/extracta/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract text and metadata from a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

// Flags for extract.
var (
	extractMime         string
	extractMetadataOnly bool
	extractRaw          bool
)

func init() {
	extractCmd.Flags().StringVar(&extractMime, "mime", "application/octet-stream", "mime type used to resolve the handling profile")
	extractCmd.Flags().BoolVar(&extractMetadataOnly, "metadata-only", false, "resolve metadata without fetching bulk text")
	extractCmd.Flags().BoolVar(&extractRaw, "raw", false, "print raw analyzer property names instead of canonical ones")
}

// extractOutput is the JSON document printed to stdout.
type extractOutput struct {
	Key      string             `json:"key"`
	Metadata domain.PropertyMap `json:"metadata"`
	Text     []string           `json:"text,omitempty"`
	Content  []string           `json:"content,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.close()

	profile, err := s.profiles.Profile(extractMime)
	if err != nil {
		return err
	}
	logger.Debug("resolved profile for %s: backend=%q shared=%t", extractMime, profile.PersistentBackend, profile.SharedCache)

	metadata, text, err := s.queries.Resolve(cmd.Context(), profile, path, extractMetadataOnly)
	if err != nil {
		// The profile may direct classified failures for the requested
		// facet to behave as an empty analyzer result.
		if !services.SuppressFailure(profile, extractMetadataOnly, err) {
			return err
		}
		logger.Info("ignoring analyzer failure per profile: %v", err)
		metadata, text = domain.PropertyMap{}, nil
	}

	if !extractRaw {
		metadata = services.NormaliseProperties(metadata)
	}

	out := extractOutput{
		Key:      mustKey(s, path),
		Metadata: metadata,
		Text:     text,
	}
	if !extractMetadataOnly {
		out.Content = services.ComposeContent(profile.ContentComposition, text, metadata)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// mustKey returns the memoised key for path. Resolution has already
// hashed the path, so this never rehashes.
func mustKey(s *stack, path string) string {
	key, err := s.hasher.KeyFor(path)
	if err != nil {
		return ""
	}
	return key.String()
}
