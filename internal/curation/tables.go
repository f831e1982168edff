package curation

import "github.com/pubtrack/pubtrack/internal/crossref"

// Tables bundles the curation inputs of one run.
type Tables struct {
	Exclude       ExcludeSet
	Overrides     Overrides
	Abbreviations Abbreviations
}

// Paths locates the curation files. Empty paths load as empty tables.
type Paths struct {
	Exclude       string
	Overrides     string
	Abbreviations string
}

// Load reads all three tables.
func Load(p Paths) (*Tables, error) {
	t := &Tables{
		Exclude:       ExcludeSet{},
		Overrides:     Overrides{},
		Abbreviations: Abbreviations{},
	}

	var err error
	if p.Exclude != "" {
		if t.Exclude, err = LoadExcludes(p.Exclude); err != nil {
			return nil, err
		}
	}
	if p.Overrides != "" {
		if t.Overrides, err = LoadOverrides(p.Overrides); err != nil {
			return nil, err
		}
	}
	if p.Abbreviations != "" {
		if t.Abbreviations, err = LoadAbbreviations(p.Abbreviations); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Excluded reports whether w is on the exclusion list.
func (t *Tables) Excluded(w crossref.Work) bool {
	return t.Exclude.Contains(w.DOI)
}

// Correct returns w with its registered author overrides applied.
func (t *Tables) Correct(w crossref.Work) crossref.Work {
	return t.Overrides.Apply(w)
}
