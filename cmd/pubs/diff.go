package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pubtrack/pubtrack/internal/git"
	"github.com/pubtrack/pubtrack/internal/publication"
)

var diffSince string

func init() {
	diffCmd.Flags().StringVar(&diffSince, "since", "HEAD", "Commit to compare the output document against")
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show publications added or removed since a commit",
	Long: `Compare the output document in the working tree to its committed version.

Useful for reviewing what a build changed before committing it.

Examples:
  pubs diff
  pubs diff --since HEAD~3 --human`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

// DiffRecord is one changed publication.
type DiffRecord struct {
	DOI   string `json:"doi"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Year  string `json:"year"`
}

// DiffResult is the response for the diff command.
type DiffResult struct {
	Since   string       `json:"since"`
	Added   []DiffRecord `json:"added"`
	Removed []DiffRecord `json:"removed"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	gitRoot := mustFindGitRepo(filepath.Dir(cfg.Output))

	diff, err := git.DiffSince(gitRoot, diffSince, cfg.Output)
	if err != nil {
		if errors.Is(err, git.ErrCommitNotFound) {
			exitWithError(ExitError, "commit not found: %s\n  Hint: Verify the commit exists with 'git log --oneline'", diffSince)
		}
		exitWithError(ExitError, "getting diff: %v", err)
	}

	result := DiffResult{
		Since:   diffSince,
		Added:   toDiffRecords(diff.Added),
		Removed: toDiffRecords(diff.Removed),
	}

	if humanOutput {
		printDiffHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// mustFindGitRepo finds the git repository root, exits on error.
func mustFindGitRepo(dir string) string {
	gitRoot, err := git.FindRepoRoot(dir)
	if err != nil {
		if errors.Is(err, git.ErrNotGitRepo) {
			exitWithError(ExitError, "not in a git repository\n  Hint: Initialize with 'git init' or navigate to a git repository")
		}
		exitWithError(ExitError, "finding git repository: %v", err)
	}
	return gitRoot
}

func toDiffRecords(records []publication.Record) []DiffRecord {
	out := make([]DiffRecord, 0, len(records))
	for _, r := range records {
		out = append(out, DiffRecord{DOI: r.DOI, Title: r.Title, Type: r.Type, Year: r.Year})
	}
	return out
}

func printDiffHuman(result DiffResult) {
	if len(result.Added) == 0 && len(result.Removed) == 0 {
		fmt.Printf("No changes since %s.\n", result.Since)
		return
	}

	fmt.Printf("Changes since %s:\n\n", result.Since)

	if len(result.Added) > 0 {
		fmt.Printf("Added (%d):\n", len(result.Added))
		for _, r := range result.Added {
			fmt.Printf("  + %s: %s (%s)\n", r.DOI, truncateString(r.Title, 50), r.Year)
		}
		fmt.Println()
	}

	if len(result.Removed) > 0 {
		fmt.Printf("Removed (%d):\n", len(result.Removed))
		for _, r := range result.Removed {
			fmt.Printf("  - %s: %s (%s)\n", r.DOI, truncateString(r.Title, 50), r.Year)
		}
	}
}
