package assets

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder returns the initials shown in place of a missing image: the
// first letter of each of the first two words of title, upper-cased.
// An empty title yields "?".
func Placeholder(title string) string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return "?"
	}
	var b strings.Builder
	for _, w := range words[:min(2, len(words))] {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
