package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/lantern/internal/cli"
	"github.com/aretw0/lantern/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Lantern walks visitors from their birthdate to a released wish lantern",
	Long: `Lantern reveals the lunar zodiac sign of a birthdate, collects wishes and
releases each of them as a lantern on the lantern service.

Configuration is read from a YAML file (--config) and LANTERN_* environment
variables, e.g. LANTERN_STORE_BACKEND=redis or LANTERN_REMOTE_API_KEY=...`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "lantern.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Override the log format (text, json)")
}

// loadConfig reads the configuration and builds the logger, honouring the global flags.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}

	logger, err := cli.NewLogger(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// loadServices builds the services of the configured backends.
// Callers must Close the result.
func loadServices(cmd *cobra.Command) (*cli.Services, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewServices(cfg, logger)
}
