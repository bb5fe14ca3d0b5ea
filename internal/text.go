package internal

import (
	"strings"
	"unicode"
)

// isQuote returns true for the string and character literal delimiters.
func isQuote(r rune) bool {
	return r == '"' || r == '\''
}

// Normalize strips a ';' comment and surrounding whitespace from a line.
// A ';' inside a quoted literal does not start a comment.
func Normalize(line string) string {
	var quote rune
	escaped := false
	for n, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && isQuote(r):
			quote = r
		case quote == 0 && r == ';':
			line = line[:n]
			return strings.TrimSpace(line)
		}
	}

	return strings.TrimSpace(line)
}

// Fields splits a normalized line at whitespace.
// Whitespace inside a quoted literal does not split the field.
func Fields(line string) (words []string) {
	var word strings.Builder
	var quote rune
	escaped := false
	inWord := false

	flush := func() {
		if inWord {
			words = append(words, word.String())
			word.Reset()
			inWord = false
		}
	}

	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && isQuote(r):
			quote = r
		case quote == 0 && unicode.IsSpace(r):
			flush()
			continue
		}
		word.WriteRune(r)
		inWord = true
	}
	flush()

	return
}
