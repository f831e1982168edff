package crossref

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for Fetcher.
const (
	DefaultMaxFailures    = 5
	DefaultPause          = 2 * time.Second
	DefaultRetryDelay     = 5 * time.Second
	DefaultStartIndexDate = "2019-06-01"
)

// WorksSource returns pages of works. *Client implements it.
type WorksSource interface {
	Works(ctx context.Context, q Query) (*WorksPage, error)
}

// ChunkSink persists one fetched page.
type ChunkSink interface {
	SaveChunk(chunk Chunk) (string, error)
}

// Checkpoint stores the "last indexed" cursor between runs.
type Checkpoint interface {
	Load() (string, error)
	Save(indexedDate string) error
}

// Fetcher polls the works endpoint from the checkpointed index date forward,
// writing each page as a chunk and advancing the checkpoint as it goes.
type Fetcher struct {
	Source     WorksSource
	Sink       ChunkSink
	Checkpoint Checkpoint
	Logger     zerolog.Logger

	Query          Query // Author, FromPubDate and Rows; FromIndexDate comes from the checkpoint
	StartIndexDate string
	MaxFailures    int
	Pause          time.Duration
	RetryDelay     time.Duration
}

// FetchResult summarises a Run.
type FetchResult struct {
	Pages           int      `json:"pages"`
	Items           int      `json:"items"`
	Failures        int      `json:"failures"`
	LastIndexedDate string   `json:"last_indexed_date"`
	Chunks          []string `json:"chunks"`
}

// Run fetches until the API returns a short or empty page, the context is
// cancelled, or MaxFailures errors have accumulated.
func (f *Fetcher) Run(ctx context.Context) (*FetchResult, error) {
	maxFailures := f.MaxFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	rows := f.Query.Rows
	if rows <= 0 {
		rows = DefaultRows
	}

	cursor, err := f.Checkpoint.Load()
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	if cursor == "" {
		cursor = f.StartIndexDate
	}
	if cursor == "" {
		cursor = DefaultStartIndexDate
	}
	f.Logger.Info().Str("from_index_date", cursor).Msg("starting fetch")

	result := &FetchResult{LastIndexedDate: cursor, Chunks: []string{}}

	for {
		q := f.Query
		q.Rows = rows
		q.FromIndexDate = cursor

		page, err := f.Source.Works(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failures++
			f.Logger.Warn().Err(err).
				Int("failure", result.Failures).
				Int("max_failures", maxFailures).
				Msg("fetch failed")
			if result.Failures >= maxFailures {
				return result, fmt.Errorf("%w: %v", ErrTooManyFailures, err)
			}
			if err := sleep(ctx, f.RetryDelay); err != nil {
				return result, err
			}
			continue
		}

		if len(page.Items) == 0 {
			f.Logger.Info().Msg("no more results")
			break
		}

		items, err := page.RawItems()
		if err != nil {
			return result, fmt.Errorf("encoding chunk: %w", err)
		}
		path, err := f.Sink.SaveChunk(Chunk{
			LastIndexedDate:   cursor,
			QueryAuthor:       q.Author,
			FilterFromPubDate: q.FromPubDate,
			Limit:             rows,
			Items:             items,
		})
		if err != nil {
			return result, fmt.Errorf("saving chunk: %w", err)
		}
		result.Pages++
		result.Items += len(page.Items)
		result.Chunks = append(result.Chunks, path)

		if next := lastIndexed(page.Items); next != "" {
			cursor = next
			if err := f.Checkpoint.Save(cursor); err != nil {
				return result, fmt.Errorf("saving checkpoint: %w", err)
			}
			result.LastIndexedDate = cursor
		}
		f.Logger.Debug().Int("items", len(page.Items)).Str("last_indexed_date", cursor).Msg("saved chunk")

		if len(page.Items) < rows {
			f.Logger.Info().Msg("short page, assuming end of results")
			break
		}
		if err := sleep(ctx, f.Pause); err != nil {
			return result, err
		}
	}

	return result, nil
}

// lastIndexed returns the indexed timestamp of the final item without its
// trailing Z, or "".
func lastIndexed(items []Work) string {
	last := items[len(items)-1]
	if last.Indexed == nil || last.Indexed.DateTime == "" {
		return ""
	}
	return strings.TrimSuffix(last.Indexed.DateTime, "Z")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
