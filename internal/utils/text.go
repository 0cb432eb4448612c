package utils

import "strings"

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Summarize shortens a model reply for the summary column. The ellipsis is
// always appended, even for short replies.
func Summarize(response string, n int) string {
	return Truncate(response, n) + "..."
}

// IsBlank reports whether s has no non-space characters.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
