package git

import (
	"sort"
	"strings"

	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/publication"
)

// Diff represents changes to the output document between two states.
type Diff struct {
	Added   []publication.Record
	Removed []publication.Record
}

// DiffSince compares the working-tree document at path to its state at
// commitRef. Returns publications added and removed since that commit.
func DiffSince(repoRoot, commitRef, path string) (*Diff, error) {
	rel, err := RelPath(repoRoot, path)
	if err != nil {
		return nil, err
	}

	old, err := DocumentAtCommit(repoRoot, commitRef, rel)
	if err != nil {
		return nil, err
	}

	current, err := CurrentDocument(path)
	if err != nil {
		return nil, err
	}

	return DiffDocuments(*old, *current), nil
}

// DiffDocuments computes the difference between two documents. Records are
// keyed by DOI, or by lower-cased title when they have none; moving between
// partitions is not a change. Both lists are sorted by key.
func DiffDocuments(old, current publication.Document) *Diff {
	oldMap := recordMap(old)
	currentMap := recordMap(current)

	added := []publication.Record{}
	for key, r := range currentMap {
		if _, exists := oldMap[key]; !exists {
			added = append(added, r)
		}
	}

	removed := []publication.Record{}
	for key, r := range oldMap {
		if _, exists := currentMap[key]; !exists {
			removed = append(removed, r)
		}
	}

	sortByKey(added)
	sortByKey(removed)
	return &Diff{Added: added, Removed: removed}
}

func recordKey(r publication.Record) string {
	if doi := crossref.NormalizeDOI(r.DOI); doi != "" {
		return doi
	}
	return "title:" + strings.ToLower(strings.TrimSpace(r.Title))
}

func recordMap(doc publication.Document) map[string]publication.Record {
	m := make(map[string]publication.Record, doc.Len())
	for _, r := range doc.Articles {
		m[recordKey(r)] = r
	}
	for _, r := range doc.Preprints {
		m[recordKey(r)] = r
	}
	return m
}

func sortByKey(records []publication.Record) {
	sort.Slice(records, func(i, j int) bool {
		return recordKey(records[i]) < recordKey(records[j])
	})
}
