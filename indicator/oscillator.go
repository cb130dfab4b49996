package indicator

import (
	"github.com/guregu/null/v6"
	"github.com/markcheno/go-talib"

	"stockwatch/model"
)

const (
	CCIPeriod = 14
	KDJFastK  = 9
	KDJSlowK  = 3
	KDJSlowD  = 3
	kdjWarmup = KDJFastK + KDJSlowK + KDJSlowD - 3
	cciWarmup = CCIPeriod - 1
)

// HasIndicators : true when at least one bar carries a CCI or KDJ value
func HasIndicators(bars []model.Bar) bool {
	for _, b := range bars {
		if b.CCI.Valid || b.KdjK.Valid || b.KdjD.Valid || b.KdjJ.Valid {
			return true
		}
	}
	return false
}

// Backfill : computes CCI(14) and KDJ(9,3,3) for bars that arrived without them.
// Values already present are kept, warm-up positions stay null. The input is not modified.
func Backfill(bars []model.Bar) []model.Bar {
	out := make([]model.Bar, len(bars))
	copy(out, bars)
	if len(bars) == 0 {
		return out
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i], lows[i], closes[i] = b.High, b.Low, b.Close
	}

	// 1) CCI
	if len(bars) > cciWarmup {
		cci := talib.Cci(highs, lows, closes, CCIPeriod)
		for i := cciWarmup; i < len(out); i++ {
			if !out[i].CCI.Valid {
				out[i].CCI = model.Clean(null.FloatFrom(cci[i]))
			}
		}
	}

	// 2) KDJ, J = 3K - 2D
	if len(bars) > kdjWarmup {
		k, d := talib.Stoch(highs, lows, closes, KDJFastK, KDJSlowK, talib.SMA, KDJSlowD, talib.SMA)
		for i := kdjWarmup; i < len(out); i++ {
			if !out[i].KdjK.Valid {
				out[i].KdjK = model.Clean(null.FloatFrom(k[i]))
			}
			if !out[i].KdjD.Valid {
				out[i].KdjD = model.Clean(null.FloatFrom(d[i]))
			}
			if !out[i].KdjJ.Valid {
				out[i].KdjJ = model.Clean(null.FloatFrom(3*k[i] - 2*d[i]))
			}
		}
	}
	return out
}
