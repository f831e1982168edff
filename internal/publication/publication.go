// Package publication defines the formatted publication record and the output
// document the pipeline produces.
package publication

import "github.com/pubtrack/pubtrack/internal/crossref"

// NoDate is the date value for a record whose published date has no parts.
const NoDate = "No date"

// Record is a formatted publication, ready for rendering.
type Record struct {
	Title   string `json:"title"`
	Journal string `json:"journal"`
	Details string `json:"details"` // vol(issue):page composite
	Date    string `json:"date"`    // YYYY-MM-DD, YYYY-MM or YYYY
	Year    string `json:"year"`
	Authors string `json:"authors"`
	DOI     string `json:"doi"`
	URL     string `json:"url"`
	Type    string `json:"type"`
	Rank    int    `json:"rank"`

	// Source is the originating record. It is kept for relation-based
	// deduplication and only serialised when audit output is requested.
	Source *crossref.Work `json:"source,omitempty"`
}

// IsArticle reports whether the record is a journal article.
func (r Record) IsArticle() bool {
	return r.Type == crossref.TypeJournalArticle
}

// Document is the final output.
type Document struct {
	Preprints []Record `json:"preprints"`
	Articles  []Record `json:"articles"`
}

// Len returns the number of records across both partitions.
func (d Document) Len() int {
	return len(d.Preprints) + len(d.Articles)
}

// WithoutSources returns a copy of d with every Source back-reference cleared.
func (d Document) WithoutSources() Document {
	out := Document{
		Preprints: make([]Record, len(d.Preprints)),
		Articles:  make([]Record, len(d.Articles)),
	}
	for i, r := range d.Preprints {
		r.Source = nil
		out.Preprints[i] = r
	}
	for i, r := range d.Articles {
		r.Source = nil
		out.Articles[i] = r
	}
	return out
}
