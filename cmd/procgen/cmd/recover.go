package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/procgen/pkg/store"
)

// recoverCmd represents the recover command
var recoverCmd = &cobra.Command{
	Use:   "recover <base>",
	Short: "Truncate a torn record from the end of a file pair",
	Long: `Truncate an interrupted write from the end of a .proc/.txt pair so both
files end on the same complete record.

Examples:
  procgen recover processes/processes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := pairBase(args[0])

		result, err := store.Recover(container.GetFs(), base)
		if result == nil {
			return err
		}

		loggerFrom(cmd).Info("recovered file pair",
			"base", base,
			"records_validated", result.RecordsValidated,
			"records_truncated", result.RecordsTruncated,
			"duration", result.RecoveryTime,
		)
		cmd.Printf("Kept %d records, truncated %d\n", result.RecordsValidated, result.RecordsTruncated)
		cmd.Printf("Binary: %d -> %d bytes\n", result.BinarySizeBefore, result.BinarySizeAfter)
		cmd.Printf("Text:   %d -> %d bytes\n", result.TextSizeBefore, result.TextSizeAfter)
		return err
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
