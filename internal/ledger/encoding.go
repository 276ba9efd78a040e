package ledger

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// toUTF8 returns line unchanged when it is valid UTF-8. Otherwise the line
// is taken to be Windows-1252 (a superset of Latin-1), the encoding older
// bank exports use.
func toUTF8(line string) string {
	if utf8.ValidString(line) {
		return line
	}
	decoded, err := charmap.Windows1252.NewDecoder().String(line)
	if err != nil {
		return strings.ToValidUTF8(line, "\uFFFD")
	}
	return strings.ToValidUTF8(decoded, "\uFFFD")
}
