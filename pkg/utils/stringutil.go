package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns a string not exceeding maxRunes runes. Adds ellipsis if truncated and addEllipsis is true.
func Truncate(s string, maxRunes int, addEllipsis bool) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	var b strings.Builder
	count := 0
	for _, r := range s {
		if count == maxRunes {
			break
		}
		b.WriteRune(r)
		count++
	}
	out := b.String()
	if addEllipsis {
		out += "…"
	}
	return out
}
