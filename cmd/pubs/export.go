package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pubtrack/pubtrack/internal/export"
	"github.com/pubtrack/pubtrack/internal/storage"
)

var exportOutput string

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write BibTeX to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the published document as BibTeX",
	Long: `Export the output document written by 'pubs build' as BibTeX.

Journal articles become @article entries and preprints @misc entries.
Keys are first-author surname plus year.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// ExportResult is the response for export --output.
type ExportResult struct {
	Status  string `json:"status"`
	Output  string `json:"output"`
	Entries int    `json:"entries"`
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	doc, err := storage.ReadDocument(cfg.Output)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitDataError, "%s not found; run 'pubs build' first", cfg.Output)
		}
		exitWithError(ExitDataError, "reading output document: %v", err)
	}

	bib := export.ToBibTeXList(*doc)

	if exportOutput == "" {
		fmt.Print(bib)
		return nil
	}

	if err := os.WriteFile(exportOutput, []byte(bib), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}

	if humanOutput {
		fmt.Printf("Exported %d entries to %s\n", doc.Len(), exportOutput)
	} else {
		outputJSON(ExportResult{Status: "exported", Output: exportOutput, Entries: doc.Len()})
	}
	return nil
}
