package tui

import "strings"

// fuzzyMatch reports whether pattern is a case-insensitive subsequence of s.
// The empty pattern matches everything.
func fuzzyMatch(pattern, s string) bool {
	if pattern == "" {
		return true
	}
	want := []rune(strings.ToLower(pattern))
	i := 0
	for _, r := range strings.ToLower(s) {
		if r == want[i] {
			i++
			if i == len(want) {
				return true
			}
		}
	}
	return false
}
