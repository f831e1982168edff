package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pubtrack/pubtrack/internal/storage"
)

var (
	listLimit     int
	listPartition string
	listType      string
	listYear      string
	listJournal   string
	listAuthor    string
)

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", DefaultListLimit, "Maximum results to return (0 for all)")
	listCmd.Flags().StringVar(&listPartition, "partition", "", "Only articles or preprints")
	listCmd.Flags().StringVar(&listType, "type", "", "Filter by record type (e.g. journal-article)")
	listCmd.Flags().StringVar(&listYear, "year", "", "Filter by year: exact (2024), range (2020:2024), or open (2020: or :2024)")
	listCmd.Flags().StringVar(&listJournal, "journal", "", "Filter by journal (partial match)")
	listCmd.Flags().StringVarP(&listAuthor, "author", "a", "", "Filter by author (prefix match)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed publications by rank",
	Long: `List publications from the query index, highest rank first.

Examples:
  pubs list --partition articles --year 2021:
  pubs list --journal Nature --human
  pubs list -a Budinger --limit 5`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	filter := storage.ListFilter{
		Type:    listType,
		Journal: listJournal,
		Author:  listAuthor,
		Limit:   listLimit,
	}

	switch listPartition {
	case "", storage.PartitionArticles, storage.PartitionPreprints:
		filter.Partition = listPartition
	default:
		exitWithError(ExitError, "invalid partition %q (valid: %s, %s)", listPartition, storage.PartitionArticles, storage.PartitionPreprints)
	}

	if listYear != "" {
		from, to, err := parseYearRange(listYear)
		if err != nil {
			exitWithError(ExitError, "invalid year format: %v", err)
		}
		filter.YearFrom = from
		filter.YearTo = to
	}

	cfg := mustLoadConfig()
	db := mustOpenIndex(cfg)
	defer db.Close()

	records, err := db.List(filter)
	if err != nil {
		exitWithError(ExitError, "listing: %v", err)
	}

	printRecords(records)
	return nil
}

func printRecords(records []storage.IndexedRecord) {
	if !humanOutput {
		outputJSON(records)
		return
	}
	if len(records) == 0 {
		fmt.Println("No publications found")
		return
	}
	fmt.Printf("Found %d publications:\n\n", len(records))
	for _, r := range records {
		printRecordSummary(r)
	}
}

// parseYearRange parses a year specification into from/to values.
// Supported formats: "2024", "2020:2024", "2020:", ":2024"
func parseYearRange(spec string) (from, to int, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0, nil
	}

	if strings.Contains(spec, ":") {
		parts := strings.SplitN(spec, ":", 2)

		if parts[0] != "" {
			from, err = strconv.Atoi(parts[0])
			if err != nil {
				return 0, 0, fmt.Errorf("invalid start year %q", parts[0])
			}
		}

		if parts[1] != "" {
			to, err = strconv.Atoi(parts[1])
			if err != nil {
				return 0, 0, fmt.Errorf("invalid end year %q", parts[1])
			}
		}

		return from, to, nil
	}

	// Single year - exact match
	year, err := strconv.Atoi(spec)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", spec)
	}

	return year, year, nil
}
