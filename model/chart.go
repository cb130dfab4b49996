package model

import "sort"

// MinVisibleBars : the zoom never narrows the window below this many bars
const MinVisibleBars = 20

// ViewportRange : inclusive index window into the displayed bars
type ViewportRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Count : number of bars in the window
func (r ViewportRange) Count() int {
	return r.End - r.Start + 1
}

// Span : End-Start
func (r ViewportRange) Span() int {
	return r.End - r.Start
}

// Slice : visible part of bars, empty when the range is stale
func (r ViewportRange) Slice(bars []Bar) []Bar {
	if len(bars) == 0 || r.Start < 0 || r.Start > r.End || r.End >= len(bars) {
		return nil
	}
	return bars[r.Start : r.End+1]
}

type Pane string

const (
	PanePrice  Pane = "price"
	PaneVolume Pane = "volume"
	PaneCCI    Pane = "cci"
	PaneKDJ    Pane = "kdj"
	PaneNone   Pane = ""
)

// HoverInfo : pointer position resolved against the visible bars
type HoverInfo struct {
	DataIndex      int     `json:"dataIndex"`
	DataPoint      Bar     `json:"dataPoint"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	IsInKLineArea  bool    `json:"isInKLineArea"`
	IsInVolumeArea bool    `json:"isInVolumeArea"`
	Pane           Pane    `json:"pane"`
}

// MAPeriods : moving-average key -> window length
var MAPeriods = map[string]int{
	"ma5":   5,
	"ma10":  10,
	"ma15":  15,
	"ma20":  20,
	"ma30":  30,
	"ma60":  60,
	"ma120": 120,
}

// MASettings : moving-average key -> visible
type MASettings map[string]bool

// DefaultMASettings : every average switched on
func DefaultMASettings() MASettings {
	s := make(MASettings, len(MAPeriods))
	for k := range MAPeriods {
		s[k] = true
	}
	return s
}

// Merge : applies toggles for known keys, unknown keys are reported back
func (s MASettings) Merge(toggles map[string]bool) (MASettings, []string) {
	out := make(MASettings, len(s))
	for k, v := range s {
		out[k] = v
	}
	var unknown []string
	for k, v := range toggles {
		if _, ok := MAPeriods[k]; !ok {
			unknown = append(unknown, k)
			continue
		}
		out[k] = v
	}
	sort.Strings(unknown)
	return out, unknown
}

// Enabled : enabled keys ordered by window length
func (s MASettings) Enabled() []string {
	keys := make([]string, 0, len(s))
	for k, on := range s {
		if _, known := MAPeriods[k]; on && known {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return MAPeriods[keys[i]] < MAPeriods[keys[j]]
	})
	return keys
}
