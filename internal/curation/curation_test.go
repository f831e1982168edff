package curation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pubtrack/pubtrack/internal/crossref"
)

func TestParseExcludes(t *testing.T) {
	input := `# preprints superseded elsewhere
10.1101/2020.01.01.000001

  10.1016/J.CELL.2021.01.001
#10.1000/commented-out
`
	set, err := ParseExcludes(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseExcludes() error = %v", err)
	}

	if len(set) != 2 {
		t.Fatalf("expected 2 DOIs, got %d: %v", len(set), set)
	}
	if !set.Contains("10.1101/2020.01.01.000001") {
		t.Error("expected exact DOI to be excluded")
	}
	if !set.Contains("10.1016/j.cell.2021.01.001") {
		t.Error("expected DOI lookup to ignore case")
	}
	if set.Contains("10.1000/commented-out") {
		t.Error("commented line should be ignored")
	}
	if set.Contains("") {
		t.Error("empty DOI should never be excluded")
	}
}

func TestLoadExcludes_MissingFile(t *testing.T) {
	set, err := LoadExcludes(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("LoadExcludes() error = %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
}

func TestParseAbbreviations(t *testing.T) {
	input := "\"American Journal of Respiratory Cell and Molecular Biology\"\t\"Am J Respir Cell Mol Biol\"\r\n" +
		"Nature Communications\tNat Commun\n" +
		"no tab on this line\n" +
		"\n" +
		" Journal of Immunology \t J Immunol \n"

	abbr, err := ParseAbbreviations(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseAbbreviations() error = %v", err)
	}

	tests := []struct {
		journal string
		want    string
	}{
		{"American Journal of Respiratory Cell and Molecular Biology", "Am J Respir Cell Mol Biol"},
		{"Nature Communications", "Nat Commun"},
		{"Journal of Immunology", "J Immunol"},
		{"bioRxiv", "bioRxiv"},
	}
	for _, tt := range tests {
		if got := abbr.Lookup(tt.journal); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.journal, got, tt.want)
		}
	}
	if len(abbr) != 3 {
		t.Errorf("expected 3 entries, got %d", len(abbr))
	}
}

func TestOverridesApply(t *testing.T) {
	o, err := ParseOverrides([]byte(`[
		{"DOI": "10.1000/ABC", "author": [
			{"given": "Jane", "family": "Smith", "sequence": "first"},
			{"name": "Lung Consortium", "truncate": true},
			{"given": "Nobody", "family": "Here", "sequence": "first"}
		]}
	]`))
	if err != nil {
		t.Fatalf("ParseOverrides() error = %v", err)
	}

	work := crossref.Work{
		DOI: "10.1000/abc",
		Author: []crossref.Author{
			{Given: "John", Family: "Doe", Sequence: "first"},
			{Given: "Jane", Family: "Smith", Sequence: "additional"},
			{Name: "Lung Consortium", Sequence: "additional"},
		},
	}

	got := o.Apply(work)

	if got.Author[1].Sequence != "first" {
		t.Errorf("given+family patch not merged: %+v", got.Author[1])
	}
	if !got.Author[2].Truncate {
		t.Errorf("name patch not merged: %+v", got.Author[2])
	}
	if got.Author[0] != work.Author[0] {
		t.Errorf("unpatched author changed: %+v", got.Author[0])
	}

	// The input record must not be aliased.
	if work.Author[1].Sequence != "additional" || work.Author[2].Truncate {
		t.Errorf("Apply mutated its input: %+v", work.Author)
	}
}

func TestOverridesApply_NoEntry(t *testing.T) {
	o := NewOverrides([]OverrideEntry{{DOI: "10.1000/other", Author: []AuthorPatch{{Name: "X", Sequence: "first"}}}})
	work := crossref.Work{DOI: "10.1000/abc", Author: []crossref.Author{{Name: "X"}}}

	got := o.Apply(work)
	if got.Author[0].Sequence != "" {
		t.Errorf("override for another DOI was applied: %+v", got.Author[0])
	}
}

func TestOverridesApply_PartialPairUsesName(t *testing.T) {
	// A patch with only family set falls back to flat-name matching and so
	// cannot match a given/family author.
	o := NewOverrides([]OverrideEntry{{DOI: "10.1/x", Author: []AuthorPatch{{Family: "Smith", Sequence: "first"}}}})
	work := crossref.Work{DOI: "10.1/x", Author: []crossref.Author{{Given: "Jane", Family: "Smith"}}}

	if got := o.Apply(work); got.Author[0].Sequence != "" {
		t.Errorf("family-only patch should be a no-op, got %+v", got.Author[0])
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	excludePath := filepath.Join(dir, "exclude.txt")
	overridesPath := filepath.Join(dir, "overrides.json")
	if err := os.WriteFile(excludePath, []byte("10.1/excluded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(overridesPath, []byte(`[{"DOI":"10.1/y","author":[]}]`), 0644); err != nil {
		t.Fatal(err)
	}

	tables, err := Load(Paths{
		Exclude:       excludePath,
		Overrides:     overridesPath,
		Abbreviations: filepath.Join(dir, "missing.tsv"),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !tables.Excluded(crossref.Work{DOI: "10.1/EXCLUDED"}) {
		t.Error("expected DOI to be excluded")
	}
	if tables.Abbreviations.Lookup("Cell") != "Cell" {
		t.Error("missing abbreviation table should pass names through")
	}
}

func TestLoad_BadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(Paths{Overrides: path}); err == nil {
		t.Error("expected error for malformed overrides")
	}
}
