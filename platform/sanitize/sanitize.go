// Package sanitize normalizes free text before it is stored.
// Output encoding is left to the renderer; stored text keeps what the user wrote.
package sanitize

import (
	"strings"
	"unicode"
)

// Text trims surrounding whitespace, normalizes line endings and drops
// control characters other than newline and tab.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return '\n'
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
