package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ssargent/procgen/pkg/config"
	"github.com/ssargent/procgen/pkg/generator"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate process descriptor file pairs",
	Long: `Generate random process descriptors and write each one as a binary
.proc file and a hex .txt mirror.

Flags override the values from the configuration file. The command exits
with a non-zero status if any process could not be written.

Examples:
  procgen generate
  procgen generate --count 20 --seed 42 --out ./processes
  procgen generate --layout stream --catalog ./catalog --metrics-file ./procgen.prom`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		applyGenerateFlags(cmd, cfg)

		report, err := runGenerate(cmd.Context(), cfg, loggerFrom(cmd))
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return err
		}
		return report.Err()
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("count", "n", 5, "Number of processes to generate")
	cmd.Flags().StringP("out", "o", "processes", "Output directory")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 derives one from the clock)")
	cmd.Flags().String("layout", string(generator.LayoutFiles), "Output layout (files, stream)")
	cmd.Flags().Int("code-min", 16, "Minimum code segment size in bytes")
	cmd.Flags().Int("code-max", 80, "Maximum code segment size in bytes")
	cmd.Flags().Int("data-min", 64, "Minimum data segment size in bytes")
	cmd.Flags().Int("data-max", 192, "Maximum data segment size in bytes")
	cmd.Flags().Bool("sync", false, "Fsync each file pair before closing it")
	cmd.Flags().String("catalog", "", "Record generated processes in the catalog at this directory")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after the run")
}

// applyGenerateFlags copies explicitly set flags over the loaded config
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("count") {
		cfg.Processes, _ = flags.GetInt("count")
	}
	if flags.Changed("out") {
		cfg.OutputDir, _ = flags.GetString("out")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("layout") {
		cfg.Layout, _ = flags.GetString("layout")
	}
	if flags.Changed("code-min") {
		cfg.CodeSize.Min, _ = flags.GetInt("code-min")
	}
	if flags.Changed("code-max") {
		cfg.CodeSize.Max, _ = flags.GetInt("code-max")
	}
	if flags.Changed("data-min") {
		cfg.DataSize.Min, _ = flags.GetInt("data-min")
	}
	if flags.Changed("data-max") {
		cfg.DataSize.Max, _ = flags.GetInt("data-max")
	}
	if flags.Changed("sync") {
		cfg.Sync, _ = flags.GetBool("sync")
	}
	if flags.Changed("catalog") {
		cfg.Catalog.Dir, _ = flags.GetString("catalog")
		cfg.Catalog.Enabled = cfg.Catalog.Dir != ""
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.File, _ = flags.GetString("metrics-file")
	}
}

// runGenerate runs one generation with the container's dependencies. The
// report is returned even when writing the metrics file fails.
func runGenerate(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*generator.Report, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := container.GetMetrics()
	opts := []generator.Option{
		generator.WithFs(container.GetFs()),
		generator.WithLogger(logger),
		generator.WithMetrics(m),
	}

	if cfg.Catalog.Enabled {
		c, err := container.OpenCatalog(cfg.Catalog.Dir)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		opts = append(opts, generator.WithCatalog(c))
	}

	g, err := generator.New(cfg.GeneratorConfig(), opts...)
	if err != nil {
		return nil, err
	}

	report, err := g.Run(ctx)

	if cfg.Metrics.File != "" {
		if werr := m.WriteTextfile(cfg.Metrics.File); werr != nil {
			err = errors.Join(err, fmt.Errorf("failed to write metrics file: %w", werr))
		}
	}

	return report, err
}

func printReport(w io.Writer, report *generator.Report) {
	for _, res := range report.Results {
		fmt.Fprintf(w, "p%-4d id=%3d code=%5d data=%5d  %s  %s\n",
			res.Index, res.ProcessID, res.CodeSize, res.DataSize, res.BinaryPath, res.TextPath)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(w, "p%-4d FAILED: %v\n", f.Index, f.Err)
	}
	fmt.Fprintf(w, "Generated %d processes, %d failed (seed %d, run %s)\n",
		len(report.Results), len(report.Failures), report.Seed, report.RunID)
}
