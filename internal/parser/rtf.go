package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// rtf destinations whose contents are metadata, not document text.
var rtfSkipGroups = map[string]struct{}{
	"fonttbl": {}, "colortbl": {}, "stylesheet": {}, "info": {},
	"pict": {}, "header": {}, "footer": {}, "field": {},
}

// extractRTF strips RTF control words and groups, keeping the document text.
// \par and \line become line breaks; \'hh hex escapes are decoded as Latin-1.
func extractRTF(data []byte) (string, error) {
	src := string(data)
	if !strings.HasPrefix(src, `{\rtf`) {
		return "", fmt.Errorf("%w: missing rtf header", ErrCorruptDocument)
	}

	var buf strings.Builder
	skipDepth := 0
	depth := 0

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '{':
			depth++
			if skipDepth == 0 && isSkipGroup(src[i+1:]) {
				skipDepth = depth
			}
		case '}':
			if skipDepth == depth {
				skipDepth = 0
			}
			depth--
		case '\\':
			word, param, consumed := readControl(src[i+1:])
			i += consumed
			if skipDepth > 0 {
				continue
			}
			switch word {
			case "par", "line":
				buf.WriteString("\n")
			case "tab":
				buf.WriteString("\t")
			case "'":
				if b, err := strconv.ParseUint(param, 16, 8); err == nil {
					buf.WriteRune(rune(b))
				}
			case "u":
				if n, err := strconv.ParseInt(param, 10, 32); err == nil {
					if n < 0 {
						n += 65536
					}
					buf.WriteRune(rune(n))
					// skip the fallback character after \uN
					if i+1 < len(src) && src[i+1] != '\\' && src[i+1] != '{' && src[i+1] != '}' {
						i++
					}
				}
			case "\\", "{", "}":
				buf.WriteString(word)
			}
		case '\r', '\n':
			// raw newlines in rtf source are not document text
		default:
			if skipDepth == 0 {
				buf.WriteByte(c)
			}
		}
	}

	return strings.TrimSpace(buf.String()), nil
}

func isSkipGroup(rest string) bool {
	rest = strings.TrimPrefix(rest, `\*`)
	if !strings.HasPrefix(rest, `\`) {
		return false
	}
	word, _, _ := readControl(rest[1:])
	_, skip := rtfSkipGroups[word]
	return skip
}

// readControl reads a control word or symbol starting after a backslash.
// It returns the word, its parameter (digits, or hex for \'), and the number
// of source bytes consumed beyond the backslash.
func readControl(rest string) (word, param string, consumed int) {
	if rest == "" {
		return "", "", 0
	}

	c := rest[0]
	if c == '\'' {
		if len(rest) >= 3 {
			return "'", rest[1:3], 3
		}
		return "'", "", len(rest)
	}
	if !isAlpha(c) {
		// control symbol such as \\, \{, \}
		return string(c), "", 1
	}

	i := 0
	for i < len(rest) && isAlpha(rest[i]) {
		i++
	}
	word = rest[:i]

	start := i
	if i < len(rest) && (rest[i] == '-' || isDigit(rest[i])) {
		i++
		for i < len(rest) && isDigit(rest[i]) {
			i++
		}
	}
	param = rest[start:i]

	// a single space after a control word is part of the control word
	if i < len(rest) && rest[i] == ' ' {
		i++
	}
	return word, param, i
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
