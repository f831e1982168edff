package curation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// fieldCutset is stripped from both ends of every abbreviation table field.
const fieldCutset = "\" \t\r\n"

// Abbreviations maps a full journal name to its abbreviated form.
type Abbreviations map[string]string

// Lookup returns the abbreviation for journal, or journal itself on a miss.
func (a Abbreviations) Lookup(journal string) string {
	if abbr, ok := a[journal]; ok && abbr != "" {
		return abbr
	}
	return journal
}

// ParseAbbreviations reads a two-column tab-separated table of
// full name and abbreviation. Lines with fewer than two columns are skipped.
func ParseAbbreviations(r io.Reader) (Abbreviations, error) {
	a := Abbreviations{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cols := strings.SplitN(scanner.Text(), "\t", 3)
		if len(cols) < 2 {
			continue
		}
		full := strings.Trim(cols[0], fieldCutset)
		abbr := strings.Trim(cols[1], fieldCutset)
		if full == "" {
			continue
		}
		a[full] = abbr
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading abbreviations: %w", err)
	}
	return a, nil
}

// LoadAbbreviations reads an abbreviation table. A missing file is an empty table.
func LoadAbbreviations(path string) (Abbreviations, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Abbreviations{}, nil
		}
		return nil, fmt.Errorf("opening abbreviations: %w", err)
	}
	defer f.Close()

	return ParseAbbreviations(f)
}
