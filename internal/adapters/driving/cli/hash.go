package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/extracta/internal/adapters/driven/hasher"
)

var hashCmd = &cobra.Command{
	Use:   "hash [file]",
	Short: "Print the content key for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

var hashXX bool

func init() {
	hashCmd.Flags().BoolVar(&hashXX, "xxhash", false, "use xxhash64 instead of SHA-256")
}

func runHash(cmd *cobra.Command, args []string) error {
	options := []hasher.Option{}
	if hashXX {
		options = append(options, hasher.WithHashFunc(hasher.XXHash64))
	}

	key, err := hasher.New(options...).KeyFor(args[0])
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}
