package agent

import (
	"strings"
	"unicode"
)

// NormalizeText cleans dictated text before it is parsed: runs of white space collapse to one
// space, and a text written entirely in capitals is lowercased.
func NormalizeText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if strings.ToUpper(s) == s && strings.IndexFunc(s, unicode.IsLetter) >= 0 {
		s = strings.ToLower(s)
	}
	return s
}
