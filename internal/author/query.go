// Package author decides whether an author entry identifies the target person.
package author

import (
	"strings"
	"unicode"

	"github.com/pubtrack/pubtrack/internal/crossref"
)

// Target is the identity the bibliography is curated for.
type Target struct {
	First  string `yaml:"first" json:"first"`
	Middle string `yaml:"middle,omitempty" json:"middle,omitempty"` // middle initial, optional
	Last   string `yaml:"last" json:"last"`
}

// ParseTarget parses a display name into a Target.
//
// Supported formats:
//   - "Nikolay Markov"      → first="Nikolay", last="Markov"
//   - "Nikolay S Markov"    → first="Nikolay", middle="S", last="Markov"
//   - "Markov, Nikolay S."  → first="Nikolay", middle="S", last="Markov"
//
// Only the initial of the first middle token is kept.
func ParseTarget(input string) Target {
	input = strings.TrimSpace(input)
	if input == "" {
		return Target{}
	}

	var last string
	var rest []string
	if idx := strings.Index(input, ","); idx > 0 {
		last = strings.TrimSpace(input[:idx])
		rest = strings.Fields(input[idx+1:])
	} else {
		parts := strings.Fields(input)
		if len(parts) == 1 {
			return Target{Last: parts[0]}
		}
		last = parts[len(parts)-1]
		rest = parts[:len(parts)-1]
	}

	t := Target{Last: last}
	if len(rest) > 0 {
		t.First = rest[0]
	}
	if len(rest) > 1 {
		if m := Normalize(rest[1]); m != "" {
			t.Middle = strings.ToUpper(m[:1])
		}
	}
	return t
}

// String renders the target as "First M Last".
func (t Target) String() string {
	return strings.Join(strings.Fields(t.First+" "+t.Middle+" "+t.Last), " ")
}

// IsZero reports whether no last name is configured.
func (t Target) IsZero() bool {
	return Normalize(t.Last) == ""
}

// Normalize strips every non-letter character and lower-cases the rest.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// Matches checks if an author entry identifies the target.
//
// Matching rules, on normalized given/family names:
//   - family must equal the target last name exactly
//   - given must start with the target first name
//   - given must contain the middle initial anywhere, if one is configured
//
// Entries with neither given nor family never match.
func (t Target) Matches(a crossref.Author) bool {
	if a.Given == "" && a.Family == "" {
		return false
	}

	given := Normalize(a.Given)
	family := Normalize(a.Family)

	// Last name first: cheapest rejection
	if family != Normalize(t.Last) {
		return false
	}

	if !strings.HasPrefix(given, Normalize(t.First)) {
		return false
	}

	if middle := Normalize(t.Middle); middle != "" && !strings.Contains(given, middle) {
		return false
	}

	return true
}

// MatchIndex returns the index of the first author matching the target, or -1.
func (t Target) MatchIndex(authors []crossref.Author) int {
	for i, a := range authors {
		if t.Matches(a) {
			return i
		}
	}
	return -1
}

// MatchesAny checks if any author in the list matches the target.
func (t Target) MatchesAny(authors []crossref.Author) bool {
	return t.MatchIndex(authors) >= 0
}
