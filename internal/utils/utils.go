package utils

import "strings"

// TruncateForLog returns a single-line preview of s of at most limit runes,
// appending an ellipsis when truncated. Runs of whitespace, newlines
// included, collapse to one space.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
