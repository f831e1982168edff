// Package curation loads the manually curated correction tables (exclusions,
// author overrides, journal abbreviations) and applies them to raw records.
package curation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pubtrack/pubtrack/internal/crossref"
)

// ExcludeSet is a set of DOIs that are dropped unconditionally.
type ExcludeSet map[string]struct{}

// NewExcludeSet builds a set from DOIs.
func NewExcludeSet(dois ...string) ExcludeSet {
	s := make(ExcludeSet, len(dois))
	for _, doi := range dois {
		if key := crossref.NormalizeDOI(doi); key != "" {
			s[key] = struct{}{}
		}
	}
	return s
}

// Contains reports whether doi is excluded. DOIs compare case-insensitively.
func (s ExcludeSet) Contains(doi string) bool {
	if doi == "" {
		return false
	}
	_, ok := s[crossref.NormalizeDOI(doi)]
	return ok
}

// ParseExcludes reads newline-delimited DOIs. Blank lines and lines starting
// with # are ignored.
func ParseExcludes(r io.Reader) (ExcludeSet, error) {
	s := ExcludeSet{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s[crossref.NormalizeDOI(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading exclusions: %w", err)
	}
	return s, nil
}

// LoadExcludes reads an exclusion file. A missing file is an empty set.
func LoadExcludes(path string) (ExcludeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ExcludeSet{}, nil
		}
		return nil, fmt.Errorf("opening exclusions: %w", err)
	}
	defer f.Close()

	return ParseExcludes(f)
}
