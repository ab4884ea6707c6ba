package stringutils

import (
	"unicode/utf8"
)

// Truncate cuts s to at most n characters and appends suffix when anything was removed.
func Truncate(s string, n int, suffix string) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	return Head(s, n) + suffix
}

// Head returns the first n characters of s.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
