package ledger

import (
	"regexp"
	"strings"
)

const (
	// Delimiter separates the fields of a ledger row
	Delimiter = ";"

	minFields   = 11
	colCategory = 9
	colHistory  = 10
)

// categoryCode matches category fields like "12 - Transfer"
var categoryCode = regexp.MustCompile(`^\d+\s*-\s*(.+)`)

// Record holds the translatable fields of a single ledger row.
// Empty fields are absent and must not be collected.
type Record struct {
	Category    string
	Description string
}

// ParseRecord extracts the category name and description from a raw row.
// It returns false when the row has fewer than 11 fields.
func ParseRecord(line string) (Record, bool) {
	parts := strings.Split(line, Delimiter)
	if len(parts) < minFields {
		return Record{}, false
	}

	return Record{
		Category:    CategoryName(parts[colCategory]),
		Description: strings.TrimSpace(parts[colHistory]),
	}, true
}

// CategoryName strips the numeric code prefix from a category field.
// Fields without the prefix are returned trimmed.
func CategoryName(field string) string {
	if field == "" {
		return ""
	}
	if m := categoryCode.FindStringSubmatch(field); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(field)
}
