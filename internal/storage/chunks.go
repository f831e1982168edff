// Package storage handles the on-disk inputs and outputs of the pipeline:
// fetched record chunks, the fetch checkpoint, the output document and the
// ephemeral SQLite query index.
package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pubtrack/pubtrack/internal/crossref"
)

// ChunkExt is the extension of record chunk files.
const ChunkExt = ".json"

// SkippedChunk records a chunk that could not be ingested.
type SkippedChunk struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// LoadResult is the outcome of reading every chunk under a data root.
type LoadResult struct {
	Works   []crossref.Work
	Files   int
	Skipped []SkippedChunk
}

// FindChunks returns every chunk file under root, recursively, in sorted order.
// Subdirectories that cannot be read are returned as skipped rather than
// failing the walk.
func FindChunks(root string) ([]string, []SkippedChunk, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("data directory is not a directory: %s", root)
	}

	var paths []string
	var skipped []SkippedChunk
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root || d == nil || !d.IsDir() {
				return err
			}
			skipped = append(skipped, SkippedChunk{Path: path, Error: err.Error()})
			return fs.SkipDir
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ChunkExt) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, skipped, nil
}

// ReadChunk decodes a single chunk file. A document without an items key is
// an error.
func ReadChunk(path string) ([]crossref.Work, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chunk: %w", err)
	}

	var chunk struct {
		Items *[]crossref.Work `json:"items"`
	}
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("parsing chunk: %w", err)
	}
	if chunk.Items == nil {
		return nil, fmt.Errorf("parsing chunk: missing items key")
	}
	return *chunk.Items, nil
}

// LoadChunks reads all chunks under root and concatenates their items in
// chunk order, then within-chunk order. A chunk that cannot be read or parsed
// is logged and skipped.
func LoadChunks(root string, logger zerolog.Logger) (*LoadResult, error) {
	paths, skippedDirs, err := FindChunks(root)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{Files: len(paths)}
	for _, s := range skippedDirs {
		logger.Warn().Str("dir", s.Path).Str("error", s.Error).Msg("skipping unreadable directory")
		result.Skipped = append(result.Skipped, s)
	}
	for _, path := range paths {
		works, err := ReadChunk(path)
		if err != nil {
			logger.Warn().Str("file", path).Err(err).Msg("skipping chunk")
			result.Skipped = append(result.Skipped, SkippedChunk{Path: path, Error: err.Error()})
			continue
		}
		result.Works = append(result.Works, works...)
	}

	logger.Debug().
		Int("files", result.Files).
		Int("skipped", len(result.Skipped)).
		Int("records", len(result.Works)).
		Msg("loaded chunks")
	return result, nil
}

// ChunkWriter writes fetched pages under a data root as
// <root>/<YYYYMM>/chunk_<YYYYMMDD_HHMMSS>.json.
type ChunkWriter struct {
	Root string
	Now  func() time.Time
}

// NewChunkWriter returns a ChunkWriter rooted at root.
func NewChunkWriter(root string) *ChunkWriter {
	return &ChunkWriter{Root: root, Now: time.Now}
}

// SaveChunk writes chunk to a new file and returns its path. Files written
// within the same second get a numeric suffix rather than overwriting.
func (w *ChunkWriter) SaveChunk(chunk crossref.Chunk) (string, error) {
	now := w.Now()
	dir := filepath.Join(w.Root, now.Format("200601"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating chunk directory: %w", err)
	}

	base := "chunk_" + now.Format("20060102_150405")
	path := filepath.Join(dir, base+ChunkExt)
	for i := 2; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ChunkExt))
	}

	if chunk.Items == nil {
		chunk.Items = []json.RawMessage{}
	}

	data, err := json.MarshalIndent(chunk, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding chunk: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
