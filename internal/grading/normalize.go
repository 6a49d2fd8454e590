package grading

import "strings"

// Normalize lower-cases and trims surrounding whitespace. Nothing else:
// internal whitespace and punctuation stay significant, so "new  york"
// and "new york" remain different answers.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
