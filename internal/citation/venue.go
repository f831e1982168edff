package citation

import (
	"net/url"
	"strings"

	"github.com/pubtrack/pubtrack/internal/crossref"
)

// Preprint server display names, keyed by the substring their hosts contain.
var preprintServers = []struct {
	hostPart string
	name     string
}{
	{"biorxiv", "bioRxiv"},
	{"medrxiv", "medRxiv"},
}

// Journal resolves the venue name of w before abbreviation.
func Journal(w crossref.Work) (string, error) {
	switch w.Type {
	case crossref.TypeJournalArticle:
		if len(w.ContainerTitle) == 0 || strings.TrimSpace(w.ContainerTitle[0]) == "" {
			return "", ErrMissingJournal
		}
		return strings.ReplaceAll(w.ContainerTitle[0], "&amp;", "&"), nil
	case crossref.TypePostedContent:
		host := hostOf(w.PrimaryURL())
		for _, server := range preprintServers {
			if strings.Contains(host, server.hostPart) {
				return server.name, nil
			}
		}
		return "", ErrUnknownPreprintServer
	default:
		return "", ErrUnsupportedType
	}
}

// hostOf returns the lower-cased host of raw, or raw itself lower-cased when
// it does not parse as an absolute URL.
func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Host)
}

// Details composes the volume/issue/page string:
//
//	vol(issue):page, vol(issue), vol:page, vol, or "".
func Details(volume, issue, page string) string {
	volume = strings.TrimSpace(volume)
	issue = strings.TrimSpace(issue)
	page = collapsePages(strings.TrimSpace(page))

	switch {
	case volume != "" && issue != "" && page != "":
		return volume + "(" + issue + "):" + page
	case volume != "" && issue != "":
		return volume + "(" + issue + ")"
	case volume != "" && page != "":
		return volume + ":" + page
	case volume != "":
		return volume
	default:
		return ""
	}
}

// collapsePages turns a range with equal ends ("45-45") into a single page.
func collapsePages(page string) string {
	for _, sep := range []string{"-", "–"} {
		start, end, found := strings.Cut(page, sep)
		if found && strings.TrimSpace(start) == strings.TrimSpace(end) {
			return strings.TrimSpace(start)
		}
	}
	return page
}
