/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/procgen/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default procgen configuration file",
	Long: `Write a default procgen configuration file.

The file is written to --config, or to ~/.config/procgen/config.yaml when no
path is given. An existing file is left alone unless --force is set.

Examples:
  procgen init
  procgen init --out ./sim/processes --config ./procgen.yaml --force`,
	Args: cobra.NoArgs,
	// The config may not exist yet, so the root pre-run is skipped
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		outputDir, _ := cmd.Flags().GetString("out")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		created, err := initConfig(configPath, outputDir, force)
		if err != nil {
			return err
		}

		if !created {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}
		cmd.Printf("Configuration written to %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("out", "", "Output directory for generated processes")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}

// initConfig writes the default configuration unless one exists and force is
// false. It reports whether a file was written.
func initConfig(configPath, outputDir string, force bool) (bool, error) {
	if config.ConfigExists(configPath) && !force {
		return false, nil
	}

	if _, err := config.BootstrapConfig(configPath, outputDir); err != nil {
		return false, fmt.Errorf("failed to initialize config: %w", err)
	}
	return true, nil
}
