// Package rank partitions deduplicated records into articles and preprints and
// assigns a single descending rank across both.
package rank

import (
	"sort"

	"github.com/pubtrack/pubtrack/internal/publication"
)

// Partition splits records into journal articles and everything else, sorts
// each by date descending and assigns ranks N..1 with every article ranked
// above every preprint. The input slice is not modified.
func Partition(records []publication.Record) publication.Document {
	articles := make([]publication.Record, 0, len(records))
	preprints := make([]publication.Record, 0, len(records))
	for _, r := range records {
		if r.IsArticle() {
			articles = append(articles, r)
		} else {
			preprints = append(preprints, r)
		}
	}

	byDateDesc(articles)
	byDateDesc(preprints)

	next := len(records)
	for i := range articles {
		articles[i].Rank = next
		next--
	}
	for i := range preprints {
		preprints[i].Rank = next
		next--
	}

	return publication.Document{Preprints: preprints, Articles: articles}
}

// Dates are zero-padded, so string order is chronological order.
func byDateDesc(records []publication.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
}
