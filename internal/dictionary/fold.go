package dictionary

import (
	"strings"

	"golang.org/x/text/cases"
)

// likeEscape is the escape character used by every LIKE predicate the repository builds.
const likeEscape = '!'

// Fold returns the case-folded form used for case-insensitive comparisons.
// A Caser keeps state, so a new one is created per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsPattern turns literal text into a LIKE pattern matching any value that
// contains the folded text. LIKE metacharacters in text are escaped so they match literally.
func ContainsPattern(text string) string {
	folded := Fold(text)

	var b strings.Builder
	b.Grow(len(folded) + 2)
	b.WriteByte('%')
	for _, r := range folded {
		switch r {
		case '%', '_', likeEscape:
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}
