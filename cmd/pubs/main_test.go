package main

import (
	"errors"
	"testing"

	"github.com/pubtrack/pubtrack/internal/citation"
	"github.com/pubtrack/pubtrack/internal/config"
	"github.com/pubtrack/pubtrack/internal/dedup"
)

func TestParseYearRange(t *testing.T) {
	tests := []struct {
		spec     string
		wantFrom int
		wantTo   int
		wantErr  bool
	}{
		{"2024", 2024, 2024, false},
		{"2020:2024", 2020, 2024, false},
		{"2020:", 2020, 0, false},
		{":2024", 0, 2024, false},
		{"", 0, 0, false},
		{"  2024  ", 2024, 2024, false},
		{"abc", 0, 0, true},
		{"abc:2024", 0, 0, true},
		{"2020:abc", 0, 0, true},
		{":", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			from, to, err := parseYearRange(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseYearRange(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
				return
			}
			if !tt.wantErr && (from != tt.wantFrom || to != tt.wantTo) {
				t.Errorf("parseYearRange(%q) = %d, %d, want %d, %d", tt.spec, from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestSplitFieldQuery(t *testing.T) {
	tests := []struct {
		query, field, value string
	}{
		{"pneumonia", "", "pneumonia"},
		{"author:Misharin", "author", "Misharin"},
		{"title:SARS-CoV-2", "title", "SARS-CoV-2"},
		{"journal:Nature", "journal", "Nature"},
		{"abstract:x", "", "abstract:x"},
	}
	for _, tt := range tests {
		field, value := splitFieldQuery(tt.query)
		if field != tt.field || value != tt.value {
			t.Errorf("splitFieldQuery(%q) = %q, %q, want %q, %q", tt.query, field, value, tt.field, tt.value)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"NF-κB signalling in lung", 8, "NF-κB..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.s, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
	}
}

func TestFormatFailures(t *testing.T) {
	errs := []*citation.FormatError{
		{DOI: "10.1/odd", Title: "Odd", Type: "posted-content", Err: citation.ErrUnknownPreprintServer},
	}
	got := formatFailures(errs)
	if len(got) != 1 {
		t.Fatalf("formatFailures() = %v", got)
	}
	if got[0].DOI != "10.1/odd" || got[0].Reason != citation.ErrUnknownPreprintServer.Error() {
		t.Errorf("formatFailures()[0] = %+v", got[0])
	}
	if !errors.Is(errs[0], citation.ErrUnknownPreprintServer) {
		t.Error("FormatError should unwrap to its cause")
	}
}

func TestFormatErrorHint(t *testing.T) {
	cfg := &config.Config{ExcludeFile: "/p/exclude.txt", OverridesFile: "/p/overrides.json"}
	want := "add the DOI to /p/exclude.txt or an author entry to /p/overrides.json, then re-run"
	if got := formatErrorHint(cfg); got != want {
		t.Errorf("formatErrorHint() = %q", got)
	}
}

func TestDescribeRemoval(t *testing.T) {
	tests := []struct {
		r    dedup.Removal
		want string
	}{
		{
			dedup.Removal{Reason: dedup.ReasonHasPreprint, RemovedDOI: "10.1101/p", KeptDOI: "10.1/a"},
			"10.1101/p dropped: preprint of 10.1/a",
		},
		{
			dedup.Removal{Reason: dedup.ReasonTitleOverlap, RemovedDOI: "10.1101/p", RemovedType: "posted-content",
				KeptDOI: "10.1/a", KeptType: "journal-article", Ratio: 0.857},
			"10.1101/p (posted-content) dropped: title overlaps 10.1/a (journal-article) at 0.86",
		},
	}
	for _, tt := range tests {
		if got := describeRemoval(tt.r); got != tt.want {
			t.Errorf("describeRemoval() = %q, want %q", got, tt.want)
		}
	}
}
