/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/procgen/pkg/config"
	"github.com/ssargent/procgen/pkg/di"
	"github.com/ssargent/procgen/pkg/logging"
)

type contextKey string

const (
	configKey contextKey = "config"
	loggerKey contextKey = "logger"
)

var container *di.Container

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "procgen",
	Short: "procgen - synthetic process descriptor generator",
	Long: `procgen writes synthetic process descriptors for simulators and loaders.

Each process is written twice, as a compact binary record (.proc) and as a
human-readable hex mirror (.txt), byte for byte in lockstep.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := resolveConfig(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Logging.Format, _ = cmd.Flags().GetString("log-format")
		}

		logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, logging.Format(cfg.Logging.Format))
		if err != nil {
			return err
		}

		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		ctx = context.WithValue(ctx, loggerKey, logger)
		cmd.SetContext(ctx)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file path (default ~/.config/procgen/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
}

// resolveConfig loads the config at configPath. A missing file is only an
// error when the path was given explicitly; otherwise defaults are used.
func resolveConfig(configPath string, explicit bool) (*config.Config, error) {
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if !config.ConfigExists(configPath) {
		if explicit {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		return config.DefaultConfig(), nil
	}

	return config.LoadConfig(configPath)
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func loggerFrom(cmd *cobra.Command) *slog.Logger {
	if logger, ok := cmd.Context().Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
