package model

import (
	"github.com/guregu/null/v6"
	"golang.org/x/exp/constraints"
)

// Series is a time series of values
type Series[T constraints.Ordered] []T

// MinMax returns the extrema of the series, ok is false when it is empty
func (s Series[T]) MinMax() (lo, hi T, ok bool) {
	if len(s) == 0 {
		return lo, hi, false
	}
	lo, hi = s[0], s[0]
	for _, v := range s[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}

// NullSeries is an indicator series where an invalid entry means "no data"
type NullSeries []null.Float

// Valid returns only the present values, in order
func (s NullSeries) Valid() Series[float64] {
	out := make(Series[float64], 0, len(s))
	for _, v := range s {
		if v.Valid {
			out = append(out, v.Float64)
		}
	}
	return out
}

// At returns the entry at i, or null when i is out of range
func (s NullSeries) At(i int) null.Float {
	if i < 0 || i >= len(s) {
		return null.Float{}
	}
	return s[i]
}

// Field extracts one nullable indicator column
func Field(bars []Bar, pick func(Bar) null.Float) NullSeries {
	out := make(NullSeries, len(bars))
	for i, b := range bars {
		out[i] = pick(b)
	}
	return out
}

func CCIOf(b Bar) null.Float  { return b.CCI }
func KdjKOf(b Bar) null.Float { return b.KdjK }
func KdjDOf(b Bar) null.Float { return b.KdjD }
func KdjJOf(b Bar) null.Float { return b.KdjJ }
