package slx

func One[T any](v T) []T {
	return []T{v}
}

// Repeat returns a slice of n copies of v.
func Repeat[T any](v T, n int) []T {
	list := make([]T, max(n, 0))
	for i := range list {
		list[i] = v
	}
	return list
}
