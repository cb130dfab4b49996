package collection

func Map[T any, V any](sources []T, f func(T) V) []V {
	results := make([]V, len(sources))
	for i, v := range sources {
		results[i] = f(v)
	}
	return results
}

// GroupBy : groups preserving the order of first appearance inside each group
func GroupBy[T any, V comparable](sources []T, f func(T) V) map[V][]T {
	result := make(map[V][]T)
	for _, v := range sources {
		key := f(v)
		result[key] = append(result[key], v)
	}
	return result
}
