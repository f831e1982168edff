package citation

import (
	"fmt"
	"strconv"

	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/publication"
)

// FormatDate renders date-parts as YYYY-MM-DD, YYYY-MM or YYYY.
func FormatDate(d *crossref.DateParts) string {
	parts := d.Parts()
	switch {
	case len(parts) >= 3:
		return fmt.Sprintf("%d-%02d-%02d", parts[0], parts[1], parts[2])
	case len(parts) == 2:
		return fmt.Sprintf("%d-%02d", parts[0], parts[1])
	case len(parts) == 1:
		return strconv.Itoa(parts[0])
	default:
		return publication.NoDate
	}
}

// Year returns the first date part as a string.
func Year(d *crossref.DateParts) (string, error) {
	parts := d.Parts()
	if len(parts) == 0 {
		return "", ErrMissingDate
	}
	return strconv.Itoa(parts[0]), nil
}
