package main

import (
	"fmt"

	"github.com/lexgraph/lexdb/internal/ioconfig"
	pkgconfig "github.com/lexgraph/lexdb/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *pkgconfig.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lexdb",
		Short: "LexDB manages the lexical database lifecycle",
		Long: `LexDB is a CLI tool for managing the complete lifecycle of a
multilingual lexical PostgreSQL database, from schema creation through
source ingestion and the transform pipeline.

The tool provides four main phases:
  - create:  Create database schema and the pgvector extension
  - migrate: Apply schema migrations
  - ingest:  Stage dictionary source files as raw entries
  - process: Clean, embed and write canonical records

Configuration precedence (highest to lowest):
  1. CLI flags (--host, --port, etc.)
  2. Environment variables (LEXDB_*)
  3. Config file (~/.config/lexdb/config.yaml)
  4. Built-in defaults

Environment Variables:
  All configuration can be set via LEXDB_* environment variables.
  Nested fields use underscores (database.host → LEXDB_DATABASE_HOST).

  Examples:
    LEXDB_DATABASE_HOST             PostgreSQL host
    LEXDB_DATABASE_PASSWORD         PostgreSQL password
    LEXDB_EMBEDDING_URL             Embedding service endpoint
    LEXDB_CACHE_ADDR                Redis address
    LEXDB_LOG_LEVEL                 Log level (debug/info/warn/error)

  See 'go doc github.com/lexgraph/lexdb/pkg/config' for complete list.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-generate config files on first run.
			if cfgFile == "" {
				exists, err := ioconfig.ConfigFileExists()
				if err != nil {
					return fmt.Errorf("failed to check config file: %w", err)
				}

				if !exists {
					generatedPath, err := ioconfig.GenerateDefaultConfig()
					if err != nil {
						// Only warn, don't fail - can use defaults
						fmt.Printf("Warning: could not generate config file: %v\n", err)
					} else {
						fmt.Printf("Generated default config at: %s\n", generatedPath)
					}
				}
			}

			result, err := ioconfig.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = result.Config

			switch result.Source {
			case "file":
				fmt.Printf("Using config from: %s\n", result.SourcePath)
			case "defaults+env":
				fmt.Println("Using built-in defaults with environment variable overrides")
			case "defaults":
				fmt.Println("Using built-in defaults (no config file)")
			}

			return setupLogger(cfg)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.config/lexdb/config.yaml)")

	rootCmd.Flags().BoolP("version", "V", false, "version for lexdb")

	rootCmd.AddCommand(getCreateCmd())
	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getIngestCmd())
	rootCmd.AddCommand(getProcessCmd())
	rootCmd.AddCommand(getSourcesCmd())

	return rootCmd
}

// getConfig returns the loaded configuration (for use in subcommands)
func getConfig() *pkgconfig.Config {
	return cfg
}
