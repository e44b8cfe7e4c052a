// Package main is the entry point for the reporag CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reporag/reporag/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reporag",
		Short: "GitHub repository retrieval pipeline",
		Long:  `Reporag ingests GitHub repositories into a document store, generates embedded chunks and metadata, builds vector indexes, and answers questions over them.`,
	}

	cmd.AddCommand(ingestCmd())
	cmd.AddCommand(metadataCmd())
	cmd.AddCommand(indexCmd())
	cmd.AddCommand(askCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from a .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
