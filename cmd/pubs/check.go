package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pubtrack/pubtrack/internal/citation"
	"github.com/pubtrack/pubtrack/internal/dedup"
	"github.com/pubtrack/pubtrack/internal/pipeline"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the pipeline without writing and report every decision",
	Long: `Run the full pipeline over data_dir without writing the output document.

Reports how many records each stage kept or dropped, every duplicate removal
with the record that caused it, unreadable chunk files, and any record that
cannot be formatted. Use it to audit the exclusion and override tables.

Exits 3 if any record cannot be formatted.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status       string          `json:"status"`
	Report       pipeline.Report `json:"report"`
	FormatErrors []FormatFailure `json:"format_errors"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := newLogger(cfg)

	result, err := runPipeline(cfg, log)
	fes := pipeline.FormatErrors(err)
	if err != nil && len(fes) == 0 {
		exitWithError(ExitDataError, "%v", err)
	}

	res := CheckResult{
		Status:       "ok",
		Report:       result.Report,
		FormatErrors: formatFailures(fes),
	}
	if len(fes) > 0 {
		res.Status = "format_errors"
	}

	if humanOutput {
		printReportHuman(res.Report, fes)
		if len(fes) > 0 {
			fmt.Printf("\nHint: %s\n", formatErrorHint(cfg))
		}
	} else {
		outputJSON(res)
	}

	if len(fes) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

func printReportHuman(rep pipeline.Report, fes []*citation.FormatError) {
	fmt.Printf("Chunk files:       %d (%d skipped)\n", rep.Files, len(rep.Skipped))
	for _, s := range rep.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.Path, s.Error)
	}
	fmt.Printf("Records loaded:    %d\n", rep.Records)
	fmt.Printf("Repeated DOIs:     %d\n", rep.Collapsed)
	fmt.Printf("Without authors:   %d\n", rep.NoAuthor)
	fmt.Printf("Excluded:          %d\n", rep.Excluded)
	fmt.Printf("Not by target:     %d\n", rep.Unmatched)
	fmt.Printf("Matched:           %d\n", rep.Matched)
	fmt.Printf("Formatted:         %d (%d failed)\n", rep.Formatted, rep.Failed)

	if len(fes) > 0 {
		fmt.Println("\nUnformattable records:")
		for _, fe := range fes {
			fmt.Printf("  %s  %s\n", fe.DOI, truncateString(fe.Title, ListTitleMaxLen))
			fmt.Printf("    %v\n", fe.Err)
		}
		return
	}

	fmt.Printf("Duplicates:        %d\n", len(rep.Removals))
	for _, r := range rep.Removals {
		fmt.Printf("  %s\n", describeRemoval(r))
	}
	fmt.Printf("Articles:          %d\n", rep.Articles)
	fmt.Printf("Preprints:         %d\n", rep.Preprints)
}

func describeRemoval(r dedup.Removal) string {
	switch r.Reason {
	case dedup.ReasonHasPreprint:
		return fmt.Sprintf("%s dropped: preprint of %s", r.RemovedDOI, r.KeptDOI)
	case dedup.ReasonTitleOverlap:
		return fmt.Sprintf("%s (%s) dropped: title overlaps %s (%s) at %.2f",
			r.RemovedDOI, r.RemovedType, r.KeptDOI, r.KeptType, r.Ratio)
	default:
		return fmt.Sprintf("%s dropped: %s", r.RemovedDOI, r.Reason)
	}
}
