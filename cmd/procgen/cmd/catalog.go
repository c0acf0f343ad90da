package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/procgen/pkg/catalog"
)

// catalogCmd groups the catalog subcommands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the catalog of generated processes",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged processes, oldest first",
	Long: `List cataloged processes, oldest first.

Examples:
  procgen catalog list --dir ./catalog --limit 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return listCatalog(catalogDir(cmd), limit, cmd.OutOrStdout())
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <ksuid>",
	Short: "Show one cataloged process as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showCatalogEntry(catalogDir(cmd), args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)

	catalogCmd.PersistentFlags().String("dir", "", "Catalog directory (defaults to catalog.dir from the config)")
	catalogListCmd.Flags().Int("limit", 0, "Maximum number of entries to list (0 for all)")
}

func openCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return nil, fmt.Errorf("no catalog directory configured")
	}
	return container.OpenCatalog(dir)
}

func catalogDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir
	}
	return configFrom(cmd).Catalog.Dir
}

func listCatalog(dir string, limit int, w io.Writer) error {
	c, err := openCatalog(dir)
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  run=%s  p%d id=%d code=%d data=%d  %s\n",
			e.Key, e.CreatedAt.Format(time.RFC3339), e.RunID,
			e.Index, e.ProcessID, e.CodeSize, e.DataSize, e.BinaryPath)
	}
	return nil
}

func showCatalogEntry(dir, key string, w io.Writer) error {
	id, err := ksuid.Parse(key)
	if err != nil {
		return fmt.Errorf("invalid catalog key %q: %w", key, err)
	}

	c, err := openCatalog(dir)
	if err != nil {
		return err
	}
	defer c.Close()

	entry, err := c.Get(id)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n%s\n", entry.Key, data)
	return nil
}
