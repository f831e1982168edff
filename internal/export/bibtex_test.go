package export

import (
	"strings"
	"testing"

	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/publication"
)

func TestToBibTeX_Article(t *testing.T) {
	r := publication.Record{
		Title:   "Alveolar macrophages in lung injury",
		Journal: "Nat Immunol",
		Details: "22(3):1-10",
		Date:    "2021-03-14",
		Year:    "2021",
		Authors: "Markov NS, Smith J",
		DOI:     "10.1038/test",
		URL:     "https://doi.org/10.1038/test",
		Type:    crossref.TypeJournalArticle,
	}

	got := ToBibTeX(r, "Markov2021")

	wants := []string{
		"@article{Markov2021,",
		`author = {Markov, NS and Smith, J}`,
		`title = {Alveolar macrophages in lung injury}`,
		`journal = {Nat Immunol}`,
		`note = {22(3):1-10}`,
		`year = {2021}`,
		`month = {3}`,
		`doi = {10.1038/test}`,
	}
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("ToBibTeX() should contain %q, got:\n%s", w, got)
		}
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Errorf("ToBibTeX() should end with closing brace, got:\n%s", got)
	}
}

func TestToBibTeX_Preprint(t *testing.T) {
	r := publication.Record{
		Title:   "A preprint",
		Journal: "bioRxiv",
		Date:    "2020",
		Year:    "2020",
		Authors: "Markov NS*, Doe A*",
		Type:    crossref.TypePostedContent,
	}

	got := ToBibTeX(r, "Markov2020")

	if !strings.HasPrefix(got, "@misc{Markov2020,") {
		t.Errorf("preprint should be @misc, got:\n%s", got)
	}
	if !strings.Contains(got, `howpublished = {bioRxiv}`) {
		t.Errorf("preprint server should be howpublished, got:\n%s", got)
	}
	if !strings.Contains(got, `author = {Markov, NS and Doe, A}`) {
		t.Errorf("equal-contribution markers should be stripped, got:\n%s", got)
	}
	if strings.Contains(got, "month") {
		t.Errorf("year-only date should have no month, got:\n%s", got)
	}
}

func TestToBibTeX_SourceAuthorsPreferred(t *testing.T) {
	r := publication.Record{
		Title:   "T",
		Year:    "2022",
		Authors: "Markov NS",
		Type:    crossref.TypeJournalArticle,
		Source: &crossref.Work{Author: []crossref.Author{
			{Given: "Nikolay S", Family: "Markov"},
			{Name: "COVID Consortium"},
		}},
	}

	got := ToBibTeX(r, "k")

	if !strings.Contains(got, `author = {Markov, Nikolay S and COVID Consortium}`) {
		t.Errorf("ToBibTeX() should use source names, got:\n%s", got)
	}
}

func TestToBibTeXList_Keys(t *testing.T) {
	doc := publication.Document{
		Articles: []publication.Record{
			{Title: "One", Year: "2021", Authors: "Markov NS", Type: crossref.TypeJournalArticle},
			{Title: "Two", Year: "2021", Authors: "Markov NS", Type: crossref.TypeJournalArticle},
		},
		Preprints: []publication.Record{
			{Title: "Three", Year: "2021", Authors: "O'Brien K", Type: crossref.TypePostedContent},
			{Title: "Four", Year: "2020", Type: crossref.TypePostedContent},
		},
	}

	got := ToBibTeXList(doc)

	for _, key := range []string{"{Markov2021,", "{Markov2021a,", "{OBrien2021,", "{Anon2020,"} {
		if !strings.Contains(got, key) {
			t.Errorf("ToBibTeXList() missing key %s, got:\n%s", key, got)
		}
	}
	if strings.Index(got, "One") > strings.Index(got, "Three") {
		t.Error("articles should precede preprints")
	}
	if n := strings.Count(got, "\n@"); n != 3 {
		t.Errorf("expected 4 entries separated by blank lines, got %d separators", n)
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Simple text", "Simple text"},
		{"A & B", `A \& B`},
		{"100%", `100\%`},
		{"$100", `\$100`},
		{"#1", `\#1`},
		{"snake_case", `snake\_case`},
		{"{braces}", `\{braces\}`},
		{"~tilde", `\textasciitilde{}tilde`},
		{"x^2", `x\textasciicircum{}2`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeLatex(tt.input); got != tt.want {
				t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
