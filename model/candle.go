package model

import (
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout : calendar date format used on the wire and in logs
const DateLayout = "2006-01-02"

// Bar : one OHLCV(+indicator) record for a day, week, month or quarter.
// Daily rows and aggregated rows share this shape.
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	PreClose float64   `json:"preclose"`
	Volume   int64     `json:"volume"`
	Amount   float64   `json:"amount"`
	Turn     float64   `json:"turn"`

	PeTTM     float64 `json:"peTTM"`
	PbMRQ     float64 `json:"pbMRQ"`
	PsTTM     float64 `json:"psTTM"`
	PcfNcfTTM float64 `json:"pcfNcfTTM"`

	// precomputed indicators, invalid when the supplier had too little history
	CCI  null.Float `json:"cci"`
	KdjK null.Float `json:"kdj_k"`
	KdjD null.Float `json:"kdj_d"`
	KdjJ null.Float `json:"kdj_j"`

	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// DailyBar : a Bar as delivered by the supplier, before any aggregation
type DailyBar = Bar

// IsUp : close at or above open (drawn with the up color)
func (b Bar) IsUp() bool {
	return b.Close >= b.Open
}

// Derive : fills Change/ChangePercent from Close and PreClose and normalises
// NaN/Inf indicator values to null
func Derive(b Bar) Bar {
	b.Change = b.Close - b.PreClose
	b.ChangePercent = ChangePercent(b.Close, b.PreClose)
	b.CCI = Clean(b.CCI)
	b.KdjK = Clean(b.KdjK)
	b.KdjD = Clean(b.KdjD)
	b.KdjJ = Clean(b.KdjJ)
	return b
}

// ChangePercent : (close-preclose)/preclose*100, zero when preclose is zero
func ChangePercent(close, preClose float64) float64 {
	if preClose == 0 {
		return 0
	}
	return (close - preClose) / preClose * 100
}

// Clean : a value that is NaN or infinite is treated as absent
func Clean(v null.Float) null.Float {
	if !v.Valid {
		return v
	}
	if math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
		return null.Float{}
	}
	return v
}

// TruncateDate : strips time of day, keeping the calendar date in UTC
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Sorted : ascending-by-date copy; the input slice is left untouched
func Sorted(bars []Bar) []Bar {
	out := make([]Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Instrument : read-only metadata shown next to the chart
type Instrument struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Area        string `json:"area"`
	Description string `json:"description"`
}
