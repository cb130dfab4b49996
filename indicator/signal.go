package indicator

import (
	"stockwatch/model"
)

// CCI thresholds
const (
	OversoldLevel   = -100.0
	OverboughtLevel = 100.0
)

// Crossing : a threshold crossing between PrevIndex and Index
type Crossing struct {
	Index     int            `json:"index"`
	PrevIndex int            `json:"prevIndex"`
	Value     float64        `json:"value"`
	Side      model.SideType `json:"side"`
}

// DetectCrossings : scans consecutive pairs of series.
// prev <= -100 and curr > -100 is a buy, prev >= 100 and curr < 100 is a sell.
// A pair with a null on either side is skipped.
func DetectCrossings(series model.NullSeries) []Crossing {
	var crossings []Crossing
	for i := 1; i < len(series); i++ {
		prev, curr := model.Clean(series[i-1]), model.Clean(series[i])
		if !prev.Valid || !curr.Valid {
			continue
		}

		switch {
		case prev.Float64 <= OversoldLevel && curr.Float64 > OversoldLevel:
			crossings = append(crossings, Crossing{Index: i, PrevIndex: i - 1, Value: curr.Float64, Side: model.SideTypeBuy})
		case prev.Float64 >= OverboughtLevel && curr.Float64 < OverboughtLevel:
			crossings = append(crossings, Crossing{Index: i, PrevIndex: i - 1, Value: curr.Float64, Side: model.SideTypeSell})
		}
	}
	return crossings
}
