package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pubtrack/pubtrack/internal/storage"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultListLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over indexed publications",
	Long: `Search titles, author strings and journals in the query index.

Query Syntax:
  Plain text     - Searches title, authors and journal
  author:name    - Search author strings only (prefix match)
  title:text     - Search titles only
  journal:name   - Search journals only

Examples:
  pubs search pneumonia
  pubs search "author:Misharin" --human
  pubs search "title:SARS-CoV-2"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenIndex(cfg)
	defer db.Close()

	field, value := splitFieldQuery(args[0])

	var records []storage.IndexedRecord
	var err error
	if field != "" {
		records, err = db.SearchField(field, value, searchLimit)
	} else {
		records, err = db.Search(value, searchLimit)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	printRecords(records)
	return nil
}

// splitFieldQuery separates a leading author:, title: or journal: prefix.
func splitFieldQuery(query string) (field, value string) {
	for _, f := range []string{"author", "title", "journal"} {
		if strings.HasPrefix(query, f+":") {
			return f, strings.TrimPrefix(query, f+":")
		}
	}
	return "", query
}
