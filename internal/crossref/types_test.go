package crossref

import (
	"encoding/json"
	"testing"
)

func TestRelatedDOIs(t *testing.T) {
	w := Work{Relation: map[string][]Relation{
		RelationHasPreprint: {
			{IDType: "doi", ID: "10.1101/a"},
			{IDType: "DOI", ID: "10.1101/b"},
			{ID: "10.1101/untyped"},
			{IDType: "uri", ID: "https://example.org/x"},
			{IDType: "doi", ID: ""},
		},
		"is-preprint-of": {{IDType: "doi", ID: "10.1000/other"}},
	}}

	got := w.RelatedDOIs(RelationHasPreprint)
	want := []string{"10.1101/a", "10.1101/b", "10.1101/untyped"}
	if len(got) != len(want) {
		t.Fatalf("RelatedDOIs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RelatedDOIs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := (Work{}).RelatedDOIs(RelationHasPreprint); len(got) != 0 {
		t.Errorf("RelatedDOIs() on work without relations = %v", got)
	}
}

func TestClone(t *testing.T) {
	w := Work{DOI: "10.1/a", Author: []Author{{Given: "Jane", Family: "Doe"}}}
	c := w.Clone()
	c.Author[0].Family = "Changed"

	if w.Author[0].Family != "Doe" {
		t.Error("Clone() shares the author slice")
	}
}

func TestAccessors(t *testing.T) {
	var w Work
	if w.FirstTitle() != "" || w.PrimaryURL() != "" || w.Published.Parts() != nil {
		t.Error("zero Work accessors should return zero values")
	}

	data := `{"title": ["First", "Second"], "resource": {"primary": {"URL": "https://www.biorxiv.org/x"}},
		"published": {"date-parts": [[2020, 2]]}, "author": [{"name": "Consortium", "sequence": "additional"}]}`
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		t.Fatal(err)
	}
	if w.FirstTitle() != "First" {
		t.Errorf("FirstTitle() = %q", w.FirstTitle())
	}
	if w.PrimaryURL() != "https://www.biorxiv.org/x" {
		t.Errorf("PrimaryURL() = %q", w.PrimaryURL())
	}
	if p := w.Published.Parts(); len(p) != 2 || p[0] != 2020 || p[1] != 2 {
		t.Errorf("Parts() = %v", p)
	}
	if w.Author[0].Name != "Consortium" {
		t.Errorf("flat author name not decoded: %+v", w.Author[0])
	}
}

func TestNormalizeDOI(t *testing.T) {
	if got := NormalizeDOI("  10.1016/J.CELL.2021.01.001 "); got != "10.1016/j.cell.2021.01.001" {
		t.Errorf("NormalizeDOI() = %q", got)
	}
}
