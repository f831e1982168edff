// Package export renders publication documents in bibliography formats.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/publication"
)

// ToBibTeX converts a record to a BibTeX entry under the given key.
func ToBibTeX(r publication.Record, key string) string {
	entryType := "article"
	if !r.IsArticle() {
		entryType = "misc"
	}
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, key))

	if authors := formatAuthors(r); authors != "" {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", authors))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(r.Title)))

	if r.Journal != "" {
		fieldName := "journal"
		if entryType == "misc" {
			fieldName = "howpublished"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(r.Journal)))
	}

	if r.Details != "" {
		b.WriteString(fmt.Sprintf("  note = {%s},\n", escapeLatex(r.Details)))
	}

	if r.Year != "" {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", r.Year))
	}

	// Month (optional)
	parts := strings.Split(r.Date, "-")
	if len(parts) >= 2 {
		b.WriteString(fmt.Sprintf("  month = {%s},\n", strings.TrimLeft(parts[1], "0")))
	}

	if r.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", r.DOI))
	}
	if r.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", r.URL))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts a document to BibTeX, articles first, each partition
// in rank order. Keys are first-author surname plus year, suffixed with a
// letter on collision.
func ToBibTeXList(doc publication.Document) string {
	records := make([]publication.Record, 0, doc.Len())
	records = append(records, doc.Articles...)
	records = append(records, doc.Preprints...)

	seen := make(map[string]int)
	var entries []string
	for _, r := range records {
		key := citationKey(r)
		n := seen[key]
		seen[key] = n + 1
		if n > 0 {
			key += string(rune('a' + n - 1))
		}
		entries = append(entries, ToBibTeX(r, key))
	}
	return strings.Join(entries, "\n")
}

func citationKey(r publication.Record) string {
	surname := "Anon"
	names := authorNames(r)
	if len(names) > 0 {
		surname = names[0][0]
	}
	var b strings.Builder
	for _, c := range surname {
		if unicode.IsLetter(c) {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		b.WriteString("Anon")
	}
	return b.String() + r.Year
}

// authorNames returns {last, first} pairs. The source record is preferred;
// without it the formatted "Last FM" string is split back apart.
func authorNames(r publication.Record) [][2]string {
	var names [][2]string
	if r.Source != nil && len(r.Source.Author) > 0 {
		for _, a := range r.Source.Author {
			names = append(names, sourceName(a))
		}
		return names
	}
	for _, entry := range strings.Split(r.Authors, ",") {
		entry = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(entry), "*"))
		if entry == "" {
			continue
		}
		if i := strings.LastIndex(entry, " "); i > 0 {
			names = append(names, [2]string{entry[:i], entry[i+1:]})
		} else {
			names = append(names, [2]string{entry, ""})
		}
	}
	return names
}

func sourceName(a crossref.Author) [2]string {
	if a.Family != "" {
		return [2]string{a.Family, a.Given}
	}
	return [2]string{a.Name, ""}
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(r publication.Record) string {
	var formatted []string
	for _, n := range authorNames(r) {
		if n[1] != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", escapeLatex(n[0]), escapeLatex(n[1])))
		} else {
			formatted = append(formatted, escapeLatex(n[0]))
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// & must be first
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
