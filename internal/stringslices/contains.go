package stringslices

import "strings"

// IndexIgnoreCase returns the index of the first element equal to s under
// Unicode case folding, or -1.
func IndexIgnoreCase(a []string, s string) int {
	for i, v := range a {
		if strings.EqualFold(v, s) {
			return i
		}
	}
	return -1
}
