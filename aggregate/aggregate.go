package aggregate

import (
	"sort"

	"github.com/guregu/null/v6"
	"github.com/samber/lo"

	"stockwatch/model"
	"stockwatch/utils/collection"
)

// Aggregate : collapses daily bars into one bar per week, month or quarter.
// Daily returns the input unchanged. The input is never modified.
func Aggregate(bars []model.Bar, frame model.TimeFrame) []model.Bar {
	if frame == model.Daily || frame == "" {
		return bars
	}
	if len(bars) == 0 {
		return []model.Bar{}
	}

	// 1) group by calendar period
	groups := collection.GroupBy(bars, func(b model.Bar) string {
		return frame.PeriodKey(b.Date)
	})

	// 2) reduce every group to one bar
	out := make([]model.Bar, 0, len(groups))
	for _, group := range groups {
		out = append(out, reduce(group))
	}

	// 3) ascending by representative (last) date
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func reduce(group []model.Bar) model.Bar {
	sorted := make([]model.Bar, len(group))
	copy(sorted, group)
	collection.Sort(sorted, func(a, b model.Bar) bool { return a.Date.Before(b.Date) })

	first := sorted[0]
	last := sorted[len(sorted)-1]

	high := lo.MaxBy(sorted, func(a, b model.Bar) bool { return a.High > b.High }).High
	low := lo.MinBy(sorted, func(a, b model.Bar) bool { return a.Low < b.Low }).Low

	out := model.Bar{
		Date:      last.Date,
		Open:      first.Open,
		Close:     last.Close,
		High:      high,
		Low:       low,
		PreClose:  first.PreClose,
		Volume:    collection.SumBy(sorted, func(b model.Bar) int64 { return b.Volume }),
		Amount:    collection.SumBy(sorted, func(b model.Bar) float64 { return b.Amount }),
		Turn:      collection.MeanBy(sorted, func(b model.Bar) float64 { return b.Turn }),
		PeTTM:     last.PeTTM,
		PbMRQ:     last.PbMRQ,
		PsTTM:     last.PsTTM,
		PcfNcfTTM: last.PcfNcfTTM,
		CCI:       lastValid(sorted, model.CCIOf),
		KdjK:      lastValid(sorted, model.KdjKOf),
		KdjD:      lastValid(sorted, model.KdjDOf),
		KdjJ:      lastValid(sorted, model.KdjJOf),
	}
	out.Change = out.Close - out.PreClose
	out.ChangePercent = model.ChangePercent(out.Close, out.PreClose)
	return out
}

func lastValid(group []model.Bar, pick func(model.Bar) null.Float) null.Float {
	b, ok := collection.LastWhere(group, func(b model.Bar) bool {
		return model.Clean(pick(b)).Valid
	})
	if !ok {
		return null.Float{}
	}
	return pick(b)
}
