package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/procgen/pkg/store"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <base>",
	Short: "Check that a .txt file mirrors its .proc file",
	Long: `Check that the text file of a pair encodes exactly the bytes of the
binary file, record for record.

The base may be given with or without the .proc or .txt extension.

Examples:
  procgen verify processes/p1
  procgen verify processes/processes.proc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := pairBase(args[0])

		result, err := store.Verify(container.GetFs(), base)
		if err != nil {
			return err
		}

		cmd.Printf("OK: %s has %d records (%d bytes)\n", base, result.Records, result.BinaryBytes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// pairBase strips a .proc or .txt extension from path
func pairBase(path string) string {
	for _, ext := range []string{store.BinaryExt, store.TextExt} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}
