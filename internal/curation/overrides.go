package curation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pubtrack/pubtrack/internal/crossref"
)

// AuthorPatch is a partial author entry. Non-empty fields overwrite the
// matching author's fields.
type AuthorPatch struct {
	Given    string `json:"given,omitempty"`
	Family   string `json:"family,omitempty"`
	Name     string `json:"name,omitempty"`
	Sequence string `json:"sequence,omitempty"`
	ORCID    string `json:"ORCID,omitempty"`
	Truncate bool   `json:"truncate,omitempty"`
}

// OverrideEntry corrects the author list of one record.
type OverrideEntry struct {
	DOI    string        `json:"DOI"`
	Author []AuthorPatch `json:"author"`
}

// Overrides maps normalized DOI to the author patches registered for it.
type Overrides map[string][]AuthorPatch

// NewOverrides indexes entries by DOI. Entries sharing a DOI are combined in
// file order.
func NewOverrides(entries []OverrideEntry) Overrides {
	o := make(Overrides, len(entries))
	for _, e := range entries {
		key := crossref.NormalizeDOI(e.DOI)
		if key == "" {
			continue
		}
		o[key] = append(o[key], e.Author...)
	}
	return o
}

// ParseOverrides decodes a JSON array of override entries.
func ParseOverrides(data []byte) (Overrides, error) {
	var entries []OverrideEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	return NewOverrides(entries), nil
}

// LoadOverrides reads an overrides file. A missing file is an empty table.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Overrides{}, nil
		}
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	return ParseOverrides(data)
}

// Apply returns w with every registered patch merged into the authors it
// matches. w itself is not modified. Patches that match no author are ignored.
func (o Overrides) Apply(w crossref.Work) crossref.Work {
	patches := o[crossref.NormalizeDOI(w.DOI)]
	if len(patches) == 0 || len(w.Author) == 0 {
		return w
	}

	out := w.Clone()
	for _, p := range patches {
		for i := range out.Author {
			if p.matches(out.Author[i]) {
				out.Author[i] = p.merge(out.Author[i])
			}
		}
	}
	return out
}

// matches pairs a patch with an author by identical given+family when the
// patch carries both, otherwise by identical flat name.
func (p AuthorPatch) matches(a crossref.Author) bool {
	if p.Given != "" && p.Family != "" {
		return a.Given == p.Given && a.Family == p.Family
	}
	if p.Name != "" {
		return a.Name == p.Name
	}
	return false
}

func (p AuthorPatch) merge(a crossref.Author) crossref.Author {
	if p.Given != "" {
		a.Given = p.Given
	}
	if p.Family != "" {
		a.Family = p.Family
	}
	if p.Name != "" {
		a.Name = p.Name
	}
	if p.Sequence != "" {
		a.Sequence = p.Sequence
	}
	if p.ORCID != "" {
		a.ORCID = p.ORCID
	}
	if p.Truncate {
		a.Truncate = true
	}
	return a
}
