package compiler

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^0-9a-zA-Z]+`)

// Normalize turns free text into an identifier-safe token.
// Surrounding whitespace is trimmed and every run of non-alphanumeric
// characters becomes a single underscore. Empty input yields nil.
func Normalize(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s := nonAlnum.ReplaceAllString(text, "_")
	return &s
}
