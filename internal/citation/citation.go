// Package citation converts matched Crossref works into formatted publication
// records: sentence-cased titles, resolved and abbreviated venues, author
// initial strings, venue details and dates.
package citation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/publication"
)

// Errors that make a work unformattable.
var (
	ErrUnsupportedType       = errors.New("unsupported record type")
	ErrUnknownPreprintServer = errors.New("posted-content from unrecognised preprint server")
	ErrMissingJournal        = errors.New("journal article without container-title")
	ErrMissingTitle          = errors.New("record without title")
	ErrMissingDate           = errors.New("record without published date")
)

// FormatError identifies the work that failed to format.
type FormatError struct {
	DOI   string
	Title string
	Type  string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formatting %s %q (type %s): %v", e.DOI, e.Title, e.Type, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Abbreviator maps a full journal name to its printed form.
type Abbreviator interface {
	Lookup(journal string) string
}

// Convert formats w. It is a pure function of w and abbr: converting the same
// inputs again yields an identical record. abbr may be nil.
func Convert(w crossref.Work, abbr Abbreviator) (publication.Record, error) {
	fail := func(err error) (publication.Record, error) {
		return publication.Record{}, &FormatError{DOI: w.DOI, Title: w.FirstTitle(), Type: w.Type, Err: err}
	}

	title := w.FirstTitle()
	if strings.TrimSpace(title) == "" {
		return fail(ErrMissingTitle)
	}

	journal, err := Journal(w)
	if err != nil {
		return fail(err)
	}
	if abbr != nil {
		journal = abbr.Lookup(journal)
	}

	if w.Published == nil {
		return fail(ErrMissingDate)
	}
	year, err := Year(w.Published)
	if err != nil {
		return fail(err)
	}

	source := w.Clone()
	return publication.Record{
		Title:   FormatTitle(title),
		Journal: journal,
		Details: Details(w.Volume, w.Issue, w.Page),
		Date:    FormatDate(w.Published),
		Year:    year,
		Authors: FormatAuthors(w.Author),
		DOI:     w.DOI,
		URL:     w.URL,
		Type:    w.Type,
		Source:  &source,
	}, nil
}
