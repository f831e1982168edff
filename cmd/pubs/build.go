package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pubtrack/pubtrack/internal/config"
	"github.com/pubtrack/pubtrack/internal/pipeline"
	"github.com/pubtrack/pubtrack/internal/storage"
)

var (
	buildOutput        string
	buildIncludeSource bool
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output path (overrides config output)")
	buildCmd.Flags().BoolVar(&buildIncludeSource, "include-source", false, "Serialise the originating Crossref record under each publication")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the publication list from fetched records",
	Long: `Build the publication list from every record chunk under data_dir.

Records are matched against the configured target author, filtered through the
exclusion list, corrected with author overrides, formatted, deduplicated and
ranked. The output document is replaced atomically.

If any matched record cannot be formatted, nothing is written: every failing
record is listed so it can be excluded or corrected, and the command exits 3.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// BuildResult is the response for the build command.
type BuildResult struct {
	Status    string `json:"status"`
	Output    string `json:"output"`
	Articles  int    `json:"articles"`
	Preprints int    `json:"preprints"`
	Removed   int    `json:"removed"`
	Skipped   int    `json:"skipped_chunks"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := newLogger(cfg)

	result := mustRunPipeline(cfg, log)

	output := cfg.Output
	if buildOutput != "" {
		output = buildOutput
	}
	doc := result.Document
	if !cfg.IncludeSource && !buildIncludeSource {
		doc = doc.WithoutSources()
	}

	if err := storage.WriteDocument(output, doc); err != nil {
		exitWithError(ExitError, "writing output: %v", err)
	}
	log.Info().
		Str("output", output).
		Int("articles", len(doc.Articles)).
		Int("preprints", len(doc.Preprints)).
		Msg("wrote publication list")

	rep := result.Report
	if humanOutput {
		fmt.Printf("Wrote %d articles and %d preprints to %s\n", len(doc.Articles), len(doc.Preprints), output)
		if len(rep.Removals) > 0 {
			fmt.Printf("Removed %d duplicates (run 'pubs check --human' for details)\n", len(rep.Removals))
		}
		if len(rep.Skipped) > 0 {
			fmt.Printf("Skipped %d unreadable chunk files\n", len(rep.Skipped))
		}
	} else {
		outputJSON(BuildResult{
			Status:    "built",
			Output:    output,
			Articles:  len(doc.Articles),
			Preprints: len(doc.Preprints),
			Removed:   len(rep.Removals),
			Skipped:   len(rep.Skipped),
		})
	}

	return nil
}

// mustRunPipeline runs the batch for cfg. It exits on unformattable records
// and on load failures.
func mustRunPipeline(cfg *config.Config, log zerolog.Logger) *pipeline.Result {
	result, err := runPipeline(cfg, log)
	if err != nil {
		if fes := pipeline.FormatErrors(err); len(fes) > 0 {
			exitWithFormatErrors(cfg, fes)
		}
		if errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitDataError, "%v\n\nRun 'pubs fetch' to download records into %s.", err, cfg.DataDir)
		}
		exitWithError(ExitDataError, "%v", err)
	}
	return result
}

func runPipeline(cfg *config.Config, log zerolog.Logger) (*pipeline.Result, error) {
	return pipeline.RunDir(cfg.DataDir, pipeline.Options{
		Target:           cfg.Target.Target(),
		Tables:           mustLoadTables(cfg),
		OverlapThreshold: cfg.OverlapThreshold,
		Logger:           log,
	})
}
