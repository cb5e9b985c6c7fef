package markdown

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeading prepares a heading text for vocabulary matching: emoji
// and emphasis markers are removed, the text is NFKC normalized, case folded
// and its whitespaces collapsed.
func NormalizeHeading(text string) string {
	text = norm.NFKC.String(text)

	text = strings.Map(func(r rune) rune {
		switch {
		case isEmoji(r):
			return -1
		case r == '*' || r == '_' || r == '`' || r == '~':
			return -1
		}
		return r
	}, text)

	text = cases.Fold().String(text)

	return strings.Join(strings.Fields(text), " ")
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0x200D || (r >= 0xFE00 && r <= 0xFE0F):
		return true
	}
	return unicode.Is(unicode.So, r)
}
