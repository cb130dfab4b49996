package chartview

import (
	"math"
	"time"

	"stockwatch/model"
)

const zoomStep = 0.1

// Viewport : visible window and hover state of one chart.
// Every mutator keeps 0 <= Start <= End <= n-1; zoom-in never goes below MinSpan().
type Viewport struct {
	Range model.ViewportRange
	Hover *model.HoverInfo

	length int
}

// Len : number of displayed bars the window indexes into
func (v *Viewport) Len() int {
	return v.length
}

// MinSpan : smallest End-Start a zoom-in may reach
func (v *Viewport) MinSpan() int {
	return max(0, min(model.MinVisibleBars-1, v.length-1))
}

// Reset : window over the last year of bars ending at now, which may be
// narrower than MinSpan; hover is cleared
func (v *Viewport) Reset(bars []model.Bar, now time.Time) {
	v.length = len(bars)
	v.Hover = nil
	if len(bars) == 0 {
		v.Range = model.ViewportRange{}
		return
	}

	yearAgo := now.AddDate(-1, 0, 0)
	start := 0
	for i, b := range bars {
		if !b.Date.Before(yearAgo) {
			start = i
			break
		}
	}
	end := len(bars) - 1
	v.Range = model.ViewportRange{Start: start, End: end}
}

// Zoom : narrows (in) or widens (out) the window by max(1, 10% of the span).
// focus in [0,1] is the pointer position across the plot; the window edge
// farther from the pointer moves more. A narrowing below the minimum span is
// rejected and false is returned.
func (v *Viewport) Zoom(in bool, focus float64) bool {
	if v.length == 0 {
		return false
	}
	focus = math.Max(0, math.Min(1, focus))

	span := v.Range.Span()
	amount := max(1, int(math.Floor(float64(span)*zoomStep)))
	left := int(math.Round(float64(amount) * focus))
	right := amount - left

	start, end := v.Range.Start, v.Range.End
	if in {
		start, end = start+left, end-right
		if end-start < v.MinSpan() {
			return false
		}
		v.Range = model.ViewportRange{Start: start, End: end}
		return true
	}

	// growth blocked at one end goes to the other
	start, end = start-left, end+right
	last := v.length - 1
	if start < 0 {
		end += -start
		start = 0
	}
	if end > last {
		start -= end - last
		end = last
	}
	start = max(0, start)
	changed := start != v.Range.Start || end != v.Range.End
	v.Range = model.ViewportRange{Start: start, End: end}
	return changed
}

// Pan : shifts the window by delta bars keeping its width, clamped at both
// ends; returns the shift actually applied
func (v *Viewport) Pan(delta int) int {
	if v.length == 0 || delta == 0 {
		return 0
	}
	span := v.Range.Span()
	start := max(0, min(v.Range.Start+delta, v.length-1-span))
	applied := start - v.Range.Start
	v.Range = model.ViewportRange{Start: start, End: start + span}
	return applied
}

func (v *Viewport) SetHover(h *model.HoverInfo) {
	v.Hover = h
}

func (v *Viewport) ClearHover() {
	v.Hover = nil
}

// Visible : bars inside the window, empty when the window is stale
func (v *Viewport) Visible(bars []model.Bar) []model.Bar {
	return v.Range.Slice(bars)
}
