package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the query index from the output document",
	Long: `Rebuild the SQLite query index (index_db) from the output document.

The index is disposable: it holds nothing that is not in the output document.
Run this after 'pubs build' to refresh 'pubs list' and 'pubs search'.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

// IndexResult is the response for the index command.
type IndexResult struct {
	Status       string `json:"status"`
	Path         string `json:"path"`
	Publications int    `json:"publications"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	db := mustOpenIndex(cfg)
	defer db.Close()

	n, err := db.RebuildFromFile(cfg.Output)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitDataError, "output document not found: %s\n\nRun 'pubs build' first.", cfg.Output)
		}
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Indexed %d publications into %s\n", n, cfg.IndexDB)
	} else {
		outputJSON(IndexResult{Status: "rebuilt", Path: cfg.IndexDB, Publications: n})
	}
	return nil
}
