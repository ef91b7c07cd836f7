package parser

import (
	"strings"
	"unicode/utf8"
)

// extractText returns plain text, falling back to a Latin-1 interpretation
// when the payload is not valid UTF-8.
func extractText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String(), nil
}
