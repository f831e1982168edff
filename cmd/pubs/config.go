package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Show the configuration after defaults, environment overrides
(CROSSREF_MAILTO, PUBS_LOG_LEVEL, PUBS_DATA_DIR, PUBS_OUTPUT) and path
resolution have been applied.

Example pubs.yml:
  target:
    name: Nikolay S Markov
  data_dir: data
  exclude_file: exclude.txt
  overrides_file: overrides.json
  abbreviations_file: journal_abbreviations.tsv
  output: publications.json
  crossref:
    query_author: markov
    from_pub_date: "2019-06-01"`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	if humanOutput {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			exitWithError(ExitError, "encoding config: %v", err)
		}
		fmt.Printf("# %s\n", cfg.Path)
		fmt.Printf("# target: %s\n", cfg.Target.Target())
		fmt.Print(string(data))
	} else {
		outputJSON(cfg)
	}
	return nil
}
