// Package pipeline runs one curation batch: load, match, correct, format,
// deduplicate and rank.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pubtrack/pubtrack/internal/author"
	"github.com/pubtrack/pubtrack/internal/citation"
	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/curation"
	"github.com/pubtrack/pubtrack/internal/dedup"
	"github.com/pubtrack/pubtrack/internal/publication"
	"github.com/pubtrack/pubtrack/internal/rank"
	"github.com/pubtrack/pubtrack/internal/storage"
)

// ErrNoTarget is returned when Options has no target last name.
var ErrNoTarget = errors.New("pipeline: target identity has no last name")

// Options configures a run.
type Options struct {
	Target           author.Target
	Tables           *curation.Tables // nil means empty tables
	OverlapThreshold float64          // <= 0 means dedup.DefaultOverlapThreshold
	Logger           zerolog.Logger
}

// Report counts what each stage kept and dropped.
type Report struct {
	Files     int                    `json:"files"`
	Skipped   []storage.SkippedChunk `json:"skipped_chunks"`
	Records   int                    `json:"records"`
	Collapsed int                    `json:"collapsed_duplicates"`
	NoAuthor  int                    `json:"no_author"`
	Excluded  int                    `json:"excluded"`
	Unmatched int                    `json:"unmatched"`
	Matched   int                    `json:"matched"`
	Formatted int                    `json:"formatted"`
	Failed    int                    `json:"format_errors"`
	Removals  []dedup.Removal        `json:"removals"`
	Articles  int                    `json:"articles"`
	Preprints int                    `json:"preprints"`
}

// Result is the outcome of a run.
type Result struct {
	Document publication.Document `json:"document"`
	Report   Report               `json:"report"`
}

// RunDir loads every chunk under dataDir and runs the batch over it.
func RunDir(dataDir string, opts Options) (*Result, error) {
	loaded, err := storage.LoadChunks(dataDir, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	result, err := Run(loaded.Works, opts)
	if result != nil {
		result.Report.Files = loaded.Files
		result.Report.Skipped = loaded.Skipped
	}
	return result, err
}

// Run processes works. When any matched record fails to format, Run returns
// a Result carrying the report so far (with an empty Document) and the joined
// *citation.FormatError values.
func Run(works []crossref.Work, opts Options) (*Result, error) {
	if opts.Target.IsZero() {
		return nil, ErrNoTarget
	}
	tables := opts.Tables
	if tables == nil {
		tables = &curation.Tables{}
	}
	log := opts.Logger

	result := &Result{Report: Report{
		Skipped:  []storage.SkippedChunk{},
		Removals: []dedup.Removal{},
		Records:  len(works),
	}}
	rep := &result.Report

	works, rep.Collapsed = CollapseDOIs(works)

	var candidates []crossref.Work
	for _, w := range works {
		switch {
		case len(w.Author) == 0:
			rep.NoAuthor++
		case tables.Excluded(w):
			rep.Excluded++
		case !opts.Target.MatchesAny(w.Author):
			rep.Unmatched++
		default:
			candidates = append(candidates, tables.Correct(w))
		}
	}
	rep.Matched = len(candidates)
	log.Debug().
		Int("records", rep.Records).
		Int("collapsed", rep.Collapsed).
		Int("no_author", rep.NoAuthor).
		Int("excluded", rep.Excluded).
		Int("matched", rep.Matched).
		Msg("selected records")

	var abbr citation.Abbreviator
	if tables.Abbreviations != nil {
		abbr = tables.Abbreviations
	}

	records := make([]publication.Record, 0, len(candidates))
	var errs []error
	for _, w := range candidates {
		r, err := citation.Convert(w, abbr)
		if err != nil {
			log.Error().Str("doi", w.DOI).Str("title", w.FirstTitle()).Err(err).Msg("cannot format record")
			errs = append(errs, err)
			continue
		}
		records = append(records, r)
	}
	rep.Formatted = len(records)
	rep.Failed = len(errs)
	if len(errs) > 0 {
		result.Document = publication.Document{Preprints: []publication.Record{}, Articles: []publication.Record{}}
		return result, errors.Join(errs...)
	}

	kept, removals := dedup.Run(records, opts.OverlapThreshold)
	for _, r := range removals {
		ev := log.Info().
			Str("reason", r.Reason).
			Str("removed", r.RemovedDOI).
			Str("kept", r.KeptDOI)
		if r.Reason == dedup.ReasonTitleOverlap {
			ev = ev.Float64("ratio", r.Ratio)
		}
		ev.Msg("removed duplicate")
	}
	rep.Removals = append(rep.Removals, removals...)

	result.Document = rank.Partition(kept)
	rep.Articles = len(result.Document.Articles)
	rep.Preprints = len(result.Document.Preprints)
	log.Debug().
		Int("articles", rep.Articles).
		Int("preprints", rep.Preprints).
		Msg("ranked records")

	return result, nil
}

// CollapseDOIs keeps one record per DOI (case-insensitive). A later
// occurrence replaces the earlier one at the earlier position. Records
// without a DOI are all kept. It returns the number of records dropped.
func CollapseDOIs(works []crossref.Work) ([]crossref.Work, int) {
	out := make([]crossref.Work, 0, len(works))
	position := make(map[string]int, len(works))
	for _, w := range works {
		key := crossref.NormalizeDOI(w.DOI)
		if key == "" {
			out = append(out, w)
			continue
		}
		if i, ok := position[key]; ok {
			out[i] = w
			continue
		}
		position[key] = len(out)
		out = append(out, w)
	}
	return out, len(works) - len(out)
}

// FormatErrors extracts every *citation.FormatError from err.
func FormatErrors(err error) []*citation.FormatError {
	if err == nil {
		return nil
	}
	var out []*citation.FormatError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, FormatErrors(e)...)
		}
		return out
	}
	var fe *citation.FormatError
	if errors.As(err, &fe) {
		out = append(out, fe)
	}
	return out
}
