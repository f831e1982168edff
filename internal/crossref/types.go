// Package crossref models Crossref works records and provides a polling client
// for the works endpoint.
package crossref

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Work types the pipeline distinguishes.
const (
	TypeJournalArticle = "journal-article"
	TypePostedContent  = "posted-content"
)

// Author sequence values.
const (
	SequenceFirst      = "first"
	SequenceAdditional = "additional"
)

// RelationHasPreprint links a published work to its earlier preprint.
const RelationHasPreprint = "has-preprint"

// Work is a single record from the works endpoint. Only the fields the
// pipeline reads are modelled. Chunks keep the full item, so decoding into
// Work never loses stored data.
type Work struct {
	Type           string                `json:"type"`
	Title          []string              `json:"title,omitempty"`
	Author         []Author              `json:"author,omitempty"`
	ContainerTitle []string              `json:"container-title,omitempty"`
	Issue          string                `json:"issue,omitempty"`
	Volume         string                `json:"volume,omitempty"`
	Page           string                `json:"page,omitempty"`
	Published      *DateParts            `json:"published,omitempty"`
	Indexed        *Timestamp            `json:"indexed,omitempty"`
	DOI            string                `json:"DOI,omitempty"`
	URL            string                `json:"URL,omitempty"`
	Resource       *Resource             `json:"resource,omitempty"`
	Relation       map[string][]Relation `json:"relation,omitempty"`
}

// Author is a contributor entry. Either Given/Family or the flat Name form is
// populated. Truncate is a local extension set through overrides: the author
// list is cut after this author when formatting.
type Author struct {
	Given    string `json:"given,omitempty"`
	Family   string `json:"family,omitempty"`
	Name     string `json:"name,omitempty"`
	Sequence string `json:"sequence,omitempty"`
	ORCID    string `json:"ORCID,omitempty"`
	Truncate bool   `json:"truncate,omitempty"`
}

// DateParts is the Crossref partial-date structure, e.g. [[2021, 3, 14]].
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Parts returns the first date-parts entry, or nil when there is none.
func (d *DateParts) Parts() []int {
	if d == nil || len(d.DateParts) == 0 {
		return nil
	}
	return d.DateParts[0]
}

// Timestamp holds the indexed/created timestamps.
type Timestamp struct {
	DateTime string `json:"date-time"`
}

// Resource holds resolution links for the work.
type Resource struct {
	Primary struct {
		URL string `json:"URL"`
	} `json:"primary"`
}

// Relation is one entry of the relation map.
type Relation struct {
	IDType     string `json:"id-type"`
	ID         string `json:"id"`
	AssertedBy string `json:"asserted-by,omitempty"`
}

// PrimaryURL returns resource.primary.URL or "".
func (w Work) PrimaryURL() string {
	if w.Resource == nil {
		return ""
	}
	return w.Resource.Primary.URL
}

// FirstTitle returns the first candidate title or "".
func (w Work) FirstTitle() string {
	if len(w.Title) == 0 {
		return ""
	}
	return w.Title[0]
}

// RelatedDOIs returns the identifiers listed under the given relation kind.
func (w Work) RelatedDOIs(kind string) []string {
	var ids []string
	for _, rel := range w.Relation[kind] {
		if rel.ID == "" {
			continue
		}
		if rel.IDType != "" && !strings.EqualFold(rel.IDType, "doi") {
			continue
		}
		ids = append(ids, rel.ID)
	}
	return ids
}

// Clone returns a copy of w whose author slice can be modified without
// affecting w.
func (w Work) Clone() Work {
	c := w
	if w.Author != nil {
		c.Author = make([]Author, len(w.Author))
		copy(c.Author, w.Author)
	}
	return c
}

// NormalizeDOI lower-cases and trims a DOI for identity comparison.
func NormalizeDOI(doi string) string {
	return strings.ToLower(strings.TrimSpace(doi))
}

// Chunk is the on-disk shape of one fetched page. Items are the works exactly
// as the API returned them.
type Chunk struct {
	LastIndexedDate   string `json:"last_indexed_date,omitempty"`
	QueryAuthor       string `json:"query_author,omitempty"`
	FilterFromPubDate string `json:"filter_from_pub_date,omitempty"`
	Limit             int    `json:"limit,omitempty"`
	Items             []json.RawMessage `json:"items"`
}

// EncodeWorks marshals works into raw chunk items.
func EncodeWorks(works []Work) ([]json.RawMessage, error) {
	items := make([]json.RawMessage, len(works))
	for i, w := range works {
		data, err := json.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", w.DOI, err)
		}
		items[i] = data
	}
	return items, nil
}
