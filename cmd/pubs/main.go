// Package main provides the pubs CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pubtrack/pubtrack/internal/config"
	"github.com/pubtrack/pubtrack/internal/curation"
	"github.com/pubtrack/pubtrack/internal/logging"
	"github.com/pubtrack/pubtrack/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	verbose     bool
	logFormat   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubs",
	Short: "Curate a personal publication list from Crossref records",
	Long: `pubs builds a deduplicated, formatted and ranked publication list for one
author from Crossref works records.

Workflow:
  pubs fetch    - poll Crossref and store raw record chunks under data_dir
  pubs build    - match, correct, format, deduplicate and rank into the output document
  pubs check    - run the same pipeline without writing, and report every decision
  pubs index    - rebuild the SQLite query index from the output document
  pubs list     - list indexed publications
  pubs search   - full-text search over indexed publications
  pubs export   - write the output document as BibTeX
  pubs diff     - show publications added or removed since a commit

Settings are read from pubs.yml (see 'pubs config').
All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for CROSSREF_MAILTO, PUBS_LOG_LEVEL)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to pubs.yml (default: $PUBS_CONFIG or nearest pubs.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json (overrides config)")
	rootCmd.Version = Version
}

// mustLoadConfig finds and loads pubs.yml, exits on error.
func mustLoadConfig() *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	path, err := config.FindConfig(configPath, cwd)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newLogger builds the stderr logger from config and command-line flags.
func newLogger(cfg *config.Config) zerolog.Logger {
	lc := cfg.Log
	if verbose {
		lc.Level = "debug"
	}
	if logFormat != "" {
		lc.Format = logFormat
	}
	return logging.New(lc, os.Stderr)
}

// mustLoadTables loads the exclusion, override and abbreviation tables, exits on error.
func mustLoadTables(cfg *config.Config) *curation.Tables {
	tables, err := curation.Load(cfg.CurationPaths())
	if err != nil {
		exitWithError(ExitDataError, "loading curation tables: %v", err)
	}
	return tables
}

// mustOpenIndex opens the SQLite query index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenIndex(cfg *config.Config) *storage.DB {
	db, err := storage.OpenDB(cfg.IndexDB)
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	return db
}
