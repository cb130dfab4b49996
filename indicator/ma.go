package indicator

import (
	"github.com/guregu/null/v6"

	"stockwatch/model"
)

// MovingAverage : trailing simple average of Close over window bars.
// The result has one entry per bar, null until window bars are available.
// A series shorter than window yields an empty result.
func MovingAverage(bars []model.Bar, window int) model.NullSeries {
	if window <= 0 || len(bars) < window {
		return model.NullSeries{}
	}

	simpleMA := make(model.NullSeries, len(bars))
	sum := 0.0
	for i := range bars {
		sum += bars[i].Close
		if i >= window {
			sum -= bars[i-window].Close
		}
		if i >= window-1 {
			simpleMA[i] = null.FloatFrom(sum / float64(window))
		}
	}
	return simpleMA
}

// MovingAverages : every enabled average of settings, keyed like the settings.
// Averages without enough history are left out.
func MovingAverages(bars []model.Bar, settings model.MASettings) map[string]model.NullSeries {
	out := make(map[string]model.NullSeries)
	for _, key := range settings.Enabled() {
		ma := MovingAverage(bars, model.MAPeriods[key])
		if len(ma) == 0 {
			continue
		}
		out[key] = ma
	}
	return out
}
