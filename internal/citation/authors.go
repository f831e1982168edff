package citation

import (
	"strings"
	"unicode"

	"github.com/pubtrack/pubtrack/internal/crossref"
)

// Marker suffixes recognised on family names.
const (
	markerFirstAuthor = "*"
	markerFootnote    = "†"
)

// formattedAuthor is one rendered author plus the flags that decide its suffixes.
type formattedAuthor struct {
	text  string
	first bool
}

// FormatAuthors renders authors as "Family GI, Family2 GI2, ...".
//
// A trailing * on a family name marks an additional first author; a trailing
// † is moved to a superscript footnote mark. When more than one author ends
// up flagged as first, each of them gets an asterisk. An author with
// Truncate set is the last one rendered.
func FormatAuthors(authors []crossref.Author) string {
	var rendered []formattedAuthor
	for _, a := range authors {
		if fa, ok := formatAuthor(a); ok {
			rendered = append(rendered, fa)
		}
		if a.Truncate {
			break
		}
	}

	firsts := 0
	for _, fa := range rendered {
		if fa.first {
			firsts++
		}
	}

	parts := make([]string, len(rendered))
	for i, fa := range rendered {
		parts[i] = fa.text
		if firsts > 1 && fa.first {
			parts[i] += markerFirstAuthor
		}
	}
	return strings.Join(parts, ", ")
}

func formatAuthor(a crossref.Author) (formattedAuthor, bool) {
	if a.Given == "" && a.Family == "" {
		name := strings.TrimSpace(a.Name)
		return formattedAuthor{text: name, first: a.Sequence == crossref.SequenceFirst}, name != ""
	}

	family, starred, footnote := stripMarkers(a.Family)
	text := strings.TrimSpace(family + " " + Initials(a.Given))
	if footnote {
		text += Superscript(markerFootnote)
	}

	return formattedAuthor{
		text:  text,
		first: starred || a.Sequence == crossref.SequenceFirst,
	}, text != ""
}

// stripMarkers removes trailing * and † markers from a family name.
func stripMarkers(family string) (name string, starred, footnote bool) {
	name = strings.TrimSpace(family)
	for {
		switch {
		case strings.HasSuffix(name, markerFirstAuthor):
			name = strings.TrimSpace(strings.TrimSuffix(name, markerFirstAuthor))
			starred = true
		case strings.HasSuffix(name, markerFootnote):
			name = strings.TrimSpace(strings.TrimSuffix(name, markerFootnote))
			footnote = true
		default:
			return name, starred, footnote
		}
	}
}

// Initials returns the upper-cased first letter of each given-name token.
// Tokens are separated by spaces or periods, so "J.R." yields "JR".
func Initials(given string) string {
	tokens := strings.FieldsFunc(given, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.'
	})

	var sb strings.Builder
	for _, tok := range tokens {
		for _, r := range tok {
			if unicode.IsLetter(r) {
				sb.WriteRune(unicode.ToUpper(r))
				break
			}
		}
	}
	return sb.String()
}
