// Package main implements the foiagraph CLI for processing documents without
// running the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openfoia/foiagraph/internal/config"
	"github.com/openfoia/foiagraph/internal/logging"
)

var (
	// configPath points at an optional TOML config file
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "foiagraph",
	Short: "Extract and link entities across FOIA response documents",
	Long: `foiagraph extracts named entities from FOIA response documents, links
them into a cross-document graph and counts cited exemptions.`,
	Version:       version,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (default: built-in defaults)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(redactionsCmd)
}

// loadConfig resolves defaults, the optional file, .env and environment.
func loadConfig() (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
