package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// CleanText trims s and collapses internal whitespace runs to one space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase lowercases s and uppercases its first letter. Blank input and a
// lone "-" map to model.Uncategorized.
func TitleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "-" {
		return model.Uncategorized
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
