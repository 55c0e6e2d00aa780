package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepform/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "stepform",
	Short: "stepform serves multi-step form wizards",
	Long: `stepform dispatches form submissions to declared triggers and runs
session-backed wizards described in YAML or JSON files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (default ./stepform.yaml)")
	flags.String("log-level", defaultLogLevel, "Log level (debug, info, warn, error)")
	flags.String("log-format", defaultLogFormat, "Log format (text, json)")
	flags.String("store", defaultStoreKind, "Session store (memory, file, redis, bolt, sqlite)")
}

// setup loads the configuration and builds the logger for a command.
func setup(cmd *cobra.Command) (*Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(path, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewFromConfig(cfg.LogFormat, level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
