package sliceutils

// Cut returns slice[start:end] where negative indexes count from the end and
// out-of-range bounds are clamped.
func Cut[T any](slice []T, start, end int) []T {
	n := len(slice)
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	start = min(max(start, 0), n)
	end = min(max(end, 0), n)
	if start >= end {
		return nil
	}

	return slice[start:end]
}

// Last returns the final n elements of slice.
func Last[T any](slice []T, n int) []T {
	if n <= 0 {
		return nil
	}
	return Cut(slice, -n, len(slice))
}
