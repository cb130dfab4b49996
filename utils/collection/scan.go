package collection

import "sort"

func Sort[T any](s []T, less func(T, T) bool) {
	sort.SliceStable(s, func(i, j int) bool {
		return less(s[i], s[j])
	})
}

func Filter[T any](s []T, predicate func(T) bool) []T {
	result := make([]T, 0, len(s))
	for _, v := range s {
		if predicate(v) {
			result = append(result, v)
		}
	}
	return result
}

// LastWhere : scans from the end and returns the first element matching predicate
func LastWhere[T any](s []T, predicate func(T) bool) (T, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if predicate(s[i]) {
			return s[i], true
		}
	}
	var zeroValue T
	return zeroValue, false
}
