// Package dedup removes publication records that represent the same work.
//
// Two passes run in sequence: records named as another record's preprint are
// dropped, then records whose titles overlap a surviving record's title are
// dropped. The title pass is greedy and order-dependent: each record is
// resolved against the first sufficiently overlapping partner that follows
// it, not against a best match.
package dedup

import (
	"strings"

	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/publication"
)

// DefaultOverlapThreshold is the title overlap ratio a pair must exceed.
const DefaultOverlapThreshold = 0.8

// Removal reasons.
const (
	ReasonHasPreprint  = "has-preprint"
	ReasonTitleOverlap = "title-overlap"
)

// Removal records one dropped record and the record that caused it.
type Removal struct {
	Reason       string  `json:"reason"`
	RemovedDOI   string  `json:"removed_doi"`
	RemovedTitle string  `json:"removed_title"`
	RemovedType  string  `json:"removed_type"`
	KeptDOI      string  `json:"kept_doi"`
	KeptTitle    string  `json:"kept_title"`
	KeptType     string  `json:"kept_type"`
	Ratio        float64 `json:"ratio,omitempty"`
}

func newRemoval(reason string, removed, kept publication.Record, ratio float64) Removal {
	return Removal{
		Reason:       reason,
		RemovedDOI:   removed.DOI,
		RemovedTitle: removed.Title,
		RemovedType:  removed.Type,
		KeptDOI:      kept.DOI,
		KeptTitle:    kept.Title,
		KeptType:     kept.Type,
		Ratio:        ratio,
	}
}

// ByPreprintRelation drops every record that another record's source lists
// under has-preprint. Records without a DOI are never dropped.
func ByPreprintRelation(records []publication.Record) ([]publication.Record, []Removal) {
	// preprint DOI -> index of the first record claiming it
	claimedBy := make(map[string]int)
	for i, r := range records {
		if r.Source == nil {
			continue
		}
		self := crossref.NormalizeDOI(r.DOI)
		for _, id := range r.Source.RelatedDOIs(crossref.RelationHasPreprint) {
			key := crossref.NormalizeDOI(id)
			if key == "" || key == self {
				continue
			}
			if _, seen := claimedBy[key]; !seen {
				claimedBy[key] = i
			}
		}
	}

	kept := make([]publication.Record, 0, len(records))
	var removals []Removal
	for _, r := range records {
		key := crossref.NormalizeDOI(r.DOI)
		if owner, ok := claimedBy[key]; ok && key != "" {
			removals = append(removals, newRemoval(ReasonHasPreprint, r, records[owner], 0))
			continue
		}
		kept = append(kept, r)
	}
	return kept, removals
}

// ByTitleOverlap drops records whose title overlaps another record's title by
// more than threshold. For each pair (a before b) the earlier record a is
// dropped when it is not a journal article, otherwise b is dropped. A record
// stops being compared once a decision involving it as the earlier member has
// been made. Pairs sharing a DOI are skipped.
func ByTitleOverlap(records []publication.Record, threshold float64) ([]publication.Record, []Removal) {
	tokens := make([]map[string]struct{}, len(records))
	for i, r := range records {
		tokens[i] = TitleTokens(r.Title)
	}

	removed := make([]bool, len(records))
	var removals []Removal

	for i := range records {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(records); j++ {
			if removed[j] || sameDOI(records[i].DOI, records[j].DOI) {
				continue
			}
			ratio := Overlap(tokens[i], tokens[j])
			if ratio <= threshold {
				continue
			}

			if !records[i].IsArticle() {
				removed[i] = true
				removals = append(removals, newRemoval(ReasonTitleOverlap, records[i], records[j], ratio))
			} else {
				removed[j] = true
				removals = append(removals, newRemoval(ReasonTitleOverlap, records[j], records[i], ratio))
			}
			break
		}
	}

	kept := make([]publication.Record, 0, len(records))
	for i, r := range records {
		if !removed[i] {
			kept = append(kept, r)
		}
	}
	return kept, removals
}

// Run applies the relation pass, then the title pass.
func Run(records []publication.Record, threshold float64) ([]publication.Record, []Removal) {
	if threshold <= 0 {
		threshold = DefaultOverlapThreshold
	}
	afterRelations, relRemovals := ByPreprintRelation(records)
	afterTitles, titleRemovals := ByTitleOverlap(afterRelations, threshold)
	return afterTitles, append(relRemovals, titleRemovals...)
}

// TitleTokens returns the set of lower-cased whitespace-separated words.
func TitleTokens(title string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(title))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Overlap returns |a ∩ b| / min(|a|, |b|), or 0 when either set is empty.
func Overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for w := range small {
		if _, ok := large[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// sameDOI compares DOIs case-insensitively; two empty DOIs are distinct.
func sameDOI(a, b string) bool {
	a, b = crossref.NormalizeDOI(a), crossref.NormalizeDOI(b)
	return a != "" && a == b
}
