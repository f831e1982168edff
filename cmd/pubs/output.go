package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pubtrack/pubtrack/internal/citation"
	"github.com/pubtrack/pubtrack/internal/config"
	"github.com/pubtrack/pubtrack/internal/storage"
)

// Constants for output formatting.
const (
	DefaultListLimit = 50 // Default limit for list/search commands

	ListTitleMaxLen = 70 // Title truncation in list and search output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FormatFailure describes one record the formatter rejected.
type FormatFailure struct {
	DOI    string `json:"doi"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// FormatErrorsResponse is the response when a run stops on unformattable records.
type FormatErrorsResponse struct {
	Error   string          `json:"error"`
	Records []FormatFailure `json:"records"`
	Hint    string          `json:"hint"`
}

func formatFailures(errs []*citation.FormatError) []FormatFailure {
	out := make([]FormatFailure, len(errs))
	for i, e := range errs {
		out[i] = FormatFailure{DOI: e.DOI, Title: e.Title, Type: e.Type, Reason: e.Err.Error()}
	}
	return out
}

func formatErrorHint(cfg *config.Config) string {
	return fmt.Sprintf("add the DOI to %s or an author entry to %s, then re-run", cfg.ExcludeFile, cfg.OverridesFile)
}

// exitWithFormatErrors reports every unformattable record and exits with ExitDataError.
func exitWithFormatErrors(cfg *config.Config, errs []*citation.FormatError) {
	failures := formatFailures(errs)
	hint := formatErrorHint(cfg)

	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %d record(s) could not be formatted; nothing was written\n\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(os.Stderr, "  %s\n", f.DOI)
			fmt.Fprintf(os.Stderr, "    %s\n", truncateString(f.Title, ListTitleMaxLen))
			fmt.Fprintf(os.Stderr, "    %s (%s)\n", f.Reason, f.Type)
		}
		fmt.Fprintf(os.Stderr, "\nHint: %s\n", hint)
	} else {
		outputJSON(FormatErrorsResponse{
			Error:   fmt.Sprintf("%d record(s) could not be formatted", len(failures)),
			Records: failures,
			Hint:    hint,
		})
	}
	os.Exit(ExitDataError)
}

// printRecordSummary prints one indexed publication in human-readable form.
func printRecordSummary(r storage.IndexedRecord) {
	fmt.Printf("[%d] %s\n", r.Rank, truncateString(r.Title, ListTitleMaxLen))
	if r.Authors != "" {
		fmt.Printf("    %s\n", truncateString(r.Authors, ListTitleMaxLen))
	}
	venue := r.Journal
	if r.Details != "" {
		venue += " " + r.Details
	}
	fmt.Printf("    %s (%s)\n", venue, r.Date)
	if r.DOI != "" {
		fmt.Printf("    doi:%s\n", r.DOI)
	}
	fmt.Println()
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
