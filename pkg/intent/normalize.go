package intent

import (
	"strings"
	"unicode"
)

// Normalize lowercases, drops apostrophes ("don't" -> "dont"), turns any
// other punctuation into a separator and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// text is a normalized message prepared for boundary-aware matching.
type text struct {
	padded string
	tokens map[string]struct{}
}

func newText(normalized string) text {
	fields := strings.Fields(normalized)
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return text{padded: " " + normalized + " ", tokens: tokens}
}

// hasPhrase matches on word boundaries so "complain" does not hit "complaint".
func (t text) hasPhrase(phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(t.padded, " "+phrase+" ")
}

func (t text) hasToken(word string) bool {
	_, ok := t.tokens[word]
	return ok
}
