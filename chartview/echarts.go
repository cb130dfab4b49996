package chartview

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"stockwatch/indicator"
	"stockwatch/model"
)

// BuildPage : interactive echarts rendition of the visible window of f
// (candles with averages, volume, CCI, KDJ)
func BuildPage(f Frame) *components.Page {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s - %s", f.Code, f.Name)

	visible := f.Range.Slice(f.Bars)
	xVals := make([]string, len(visible))
	for i, b := range visible {
		xVals[i] = f.TimeFrame.Label(b.Date)
	}

	page.AddCharts(
		buildCandleChart(f, visible, xVals),
		buildVolumeChart(visible, xVals),
		buildCCIChart(visible, xVals),
		buildKDJChart(visible, xVals),
	)
	return page
}

func globalOpts(title, height string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: height}),
		charts.WithTitleOpts(opts.Title{Title: title, Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	}
}

// buildCandleChart : Kline with the enabled moving averages overlapped
func buildCandleChart(f Frame, visible []model.Bar, xVals []string) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(globalOpts(fmt.Sprintf("%s - %s", f.Code, f.Name), "400px")...)
	kline.SetGlobalOptions(charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}))

	// echarts Kline order is [open, close, low, high]
	kValues := make([]opts.KlineData, len(visible))
	for i, b := range visible {
		kValues[i] = opts.KlineData{Value: [4]float64{b.Open, b.Close, b.Low, b.High}}
	}
	kline.SetXAxis(xVals).
		AddSeries("KLine", kValues).
		SetSeriesOptions(charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        "#ef5350",
			Color0:       "#66bb6a",
			BorderColor:  "#ef5350",
			BorderColor0: "#66bb6a",
		}))

	for _, key := range f.MASettings.Enabled() {
		full, ok := f.MovingAverages[key]
		if !ok || len(full) == 0 {
			continue
		}
		window := make(model.NullSeries, len(visible))
		for i := range window {
			window[i] = full.At(f.Range.Start + i)
		}
		line := charts.NewLine()
		line.SetXAxis(xVals).
			AddSeries(key, lineData(window)).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: css(maColors[key]), Width: 1}),
			)
		kline.Overlap(line)
	}
	return kline
}

// buildVolumeChart : bars colored like their candle, opacity following turnover
func buildVolumeChart(visible []model.Bar, xVals []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts("Volume", "200px")...)

	maxAmount := 0.0
	for _, b := range visible {
		maxAmount = max(maxAmount, b.Amount)
	}
	data := make([]opts.BarData, len(visible))
	for i, b := range visible {
		data[i] = opts.BarData{
			Value:     b.Volume,
			ItemStyle: &opts.ItemStyle{Color: css(candleColor(b).WithAlpha(volumeAlpha(b.Amount, maxAmount)))},
		}
	}
	bar.SetXAxis(xVals).AddSeries("Volume", data)
	return bar
}

// buildCCIChart : CCI with the +-100 levels
func buildCCIChart(visible []model.Bar, xVals []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts("CCI", "200px")...)
	line.SetXAxis(xVals).
		AddSeries("CCI", lineData(model.Field(visible, model.CCIOf))).
		SetSeriesOptions(
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#4682b4", Width: 2}),
			charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: "overbought", YAxis: indicator.OverboughtLevel},
				opts.MarkLineNameYAxisItem{Name: "oversold", YAxis: indicator.OversoldLevel},
			),
		)
	return line
}

// buildKDJChart : K, D and J lines
func buildKDJChart(visible []model.Bar, xVals []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts("KDJ", "200px")...)
	line.SetXAxis(xVals).
		AddSeries("K", lineData(model.Field(visible, model.KdjKOf)), charts.WithLineStyleOpts(opts.LineStyle{Color: "#ff0000"})).
		AddSeries("D", lineData(model.Field(visible, model.KdjDOf)), charts.WithLineStyleOpts(opts.LineStyle{Color: "#00ff00"})).
		AddSeries("J", lineData(model.Field(visible, model.KdjJOf)), charts.WithLineStyleOpts(opts.LineStyle{Color: "#0000ff"}))
	return line
}

func css(c drawing.Color) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, float64(c.A)/255)
}

// lineData : "-" is echarts' empty point, the line breaks there
func lineData(values model.NullSeries) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		if v = model.Clean(v); v.Valid {
			out[i] = opts.LineData{Value: v.Float64}
			continue
		}
		out[i] = opts.LineData{Value: "-"}
	}
	return out
}
