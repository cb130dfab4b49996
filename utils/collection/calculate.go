package collection

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

func SumBy[T any, N Number](s []T, valueSelector func(T) N) N {
	var result N
	for _, item := range s {
		result += valueSelector(item)
	}
	return result
}

// MeanBy : arithmetic mean, zero for an empty slice
func MeanBy[T any](s []T, valueSelector func(T) float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return SumBy(s, valueSelector) / float64(len(s))
}
