package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pubtrack/pubtrack/internal/publication"
)

// WriteDocument writes doc as indented JSON. The file is replaced atomically:
// a failed write leaves any previous document untouched.
func WriteDocument(path string, doc publication.Document) error {
	if doc.Preprints == nil {
		doc.Preprints = []publication.Record{}
	}
	if doc.Articles == nil {
		doc.Articles = []publication.Record{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return writeFileAtomic(path, data)
}

// ReadDocument reads a document written by WriteDocument.
func ReadDocument(path string) (*publication.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument decodes a document's JSON form.
func ParseDocument(data []byte) (*publication.Document, error) {
	var doc publication.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &doc, nil
}

// writeFileAtomic writes to a temp file next to path, then renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Checkpoint is a file holding the fetch cursor (an index date).
type Checkpoint struct {
	Path string
}

// Load returns the stored cursor, or "" when the file does not exist.
func (c Checkpoint) Load() (string, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading checkpoint: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save replaces the stored cursor.
func (c Checkpoint) Save(indexedDate string) error {
	if dir := filepath.Dir(c.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating checkpoint directory: %w", err)
		}
	}
	return writeFileAtomic(c.Path, []byte(indexedDate))
}
