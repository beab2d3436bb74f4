package pkg

// Contains check source have target
func Contains[T comparable](slice []T, val T) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

// Without return a copy of slice with every occurrence of vals removed
func Without[T comparable](slice []T, vals ...T) []T {
	out := make([]T, 0, len(slice))
	for _, v := range slice {
		if !Contains(vals, v) {
			out = append(out, v)
		}
	}
	return out
}
