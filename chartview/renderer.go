package chartview

import (
	"errors"
	"fmt"
	"math"

	"github.com/guregu/null/v6"
	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"stockwatch/indicator"
	"stockwatch/model"
)

var ErrSurfaceTooSmall = errors.New("surface too small for the chart margins")

const (
	arrowSize      = 8.0
	candleArrowGap = 20.0
	lineArrowGap   = 4.0
	minVolumeAlpha = 0.3

	labelFontSize = 9.0
	titleFontSize = 12.0

	xLabelTicks = 10
	gridColumns = 10
)

// Frame : everything one paint depends on
type Frame struct {
	Code      string
	Name      string
	TimeFrame model.TimeFrame

	// displayed bars and their full-series moving averages
	Bars           []model.Bar
	MovingAverages map[string]model.NullSeries
	MASettings     model.MASettings

	Range model.ViewportRange
	Hover *model.HoverInfo
}

// Render : paints the four panes of f onto s. A stale or empty window draws nothing.
func Render(s Surface, f Frame) error {
	w, h := s.Size()
	l := NewLayout(w, h)
	if !l.Usable() {
		return fmt.Errorf("%w: %dx%d", ErrSurfaceTooSmall, w, h)
	}

	visible := f.Range.Slice(f.Bars)
	if len(visible) == 0 {
		return nil
	}

	p := &painter{s: s, l: l, f: f, visible: visible}
	p.measure()

	// 1) background, grid, frames
	p.background()
	p.grid()
	p.frames()

	// 2) axis labels
	p.yLabels()
	p.xLabels()

	// 3) price pane
	p.candles()
	p.candleSignals()
	p.movingAverages()

	// 4) lower panes
	p.volume()
	p.cci()
	p.kdj()

	// 5) overlays
	if f.Hover != nil {
		p.crosshair(*f.Hover)
		p.tooltip(*f.Hover)
	}
	p.title()
	return nil
}

type painter struct {
	s       Surface
	l       Layout
	f       Frame
	visible []model.Bar

	price, vol         scale
	cciScale, kdjScale scale
	maxAmount          float64
}

func (p *painter) measure() {
	v := p.visible

	p.price = scale{
		lo: lo.MinBy(v, func(a, b model.Bar) bool { return a.Low < b.Low }).Low,
		hi: lo.MaxBy(v, func(a, b model.Bar) bool { return a.High > b.High }).High,
	}
	p.vol = scale{lo: 0, hi: float64(lo.MaxBy(v, func(a, b model.Bar) bool { return a.Volume > b.Volume }).Volume)}
	p.maxAmount = lo.MaxBy(v, func(a, b model.Bar) bool { return a.Amount > b.Amount }).Amount

	// oscillator ranges keep the reference levels inside
	p.cciScale = scale{lo: -150, hi: 150}
	if mn, mx, ok := model.Field(v, model.CCIOf).Valid().MinMax(); ok {
		p.cciScale = scale{lo: math.Min(mn, -150), hi: math.Max(mx, 150)}
	}
	p.kdjScale = scale{lo: 0, hi: 100}
	var kdj model.Series[float64]
	for _, pick := range []func(model.Bar) null.Float{model.KdjKOf, model.KdjDOf, model.KdjJOf} {
		kdj = append(kdj, model.Field(v, pick).Valid()...)
	}
	if mn, mx, ok := kdj.MinMax(); ok {
		p.kdjScale = scale{lo: math.Min(mn, 0), hi: math.Max(mx, 100)}
	}
}

func (p *painter) x(i int) float64 {
	return p.l.X(i, len(p.visible))
}

func (p *painter) background() {
	p.s.SetFillColor(colorWhite)
	p.rect(0, 0, p.l.Width, p.l.Height)
	p.s.Fill()
}

func (p *painter) grid() {
	p.stroke(colorGrid, 1, nil)
	for i := 0; i <= gridColumns; i++ {
		x := p.l.Left() + float64(i)*p.l.ChartWidth()/gridColumns
		for _, b := range p.l.Bands() {
			p.moveTo(x, b.Top)
			p.lineTo(x, b.Bottom())
		}
	}
	for _, b := range p.l.Bands() {
		rows := gridRows(b.Pane)
		for i := 0; i <= rows; i++ {
			y := b.Top + float64(i)*b.Height/float64(rows)
			p.moveTo(p.l.Left(), y)
			p.lineTo(p.l.Right(), y)
		}
	}
	p.s.Stroke()
}

func gridRows(pane model.Pane) int {
	switch pane {
	case model.PanePrice:
		return 5
	case model.PaneKDJ:
		return 4
	default:
		return 3
	}
}

func (p *painter) frames() {
	p.stroke(colorAxis, 1, nil)
	for _, b := range p.l.Bands() {
		p.moveTo(p.l.Left(), b.Top)
		p.lineTo(p.l.Left(), b.Bottom())
		p.lineTo(p.l.Right(), b.Bottom())
		p.lineTo(p.l.Right(), b.Top)
	}
	p.s.Stroke()
}

func (p *painter) yLabels() {
	p.font(colorText, labelFontSize)
	p.axisLabels(p.l.Price, p.price, 5, func(v float64) string { return fmt.Sprintf("%.2f", v) })
	p.axisLabels(p.l.Volume, scale{lo: 0, hi: p.vol.span()}, 3, formatVolume)
	p.axisLabels(p.l.CCI, p.cciScale, 3, func(v float64) string { return fmt.Sprintf("%.0f", v) })
	p.axisLabels(p.l.KDJ, p.kdjScale, 4, func(v float64) string { return fmt.Sprintf("%.0f", v) })
}

// axisLabels : same values on both sides of the plot
func (p *painter) axisLabels(b Band, sc scale, rows int, format func(float64) string) {
	for i := 0; i <= rows; i++ {
		label := format(sc.hi - float64(i)*sc.span()/float64(rows))
		y := b.Top + float64(i)*b.Height/float64(rows) + 4
		width := float64(p.s.MeasureText(label).Width())
		p.text(label, p.l.Left()-5-width, y)
		p.text(label, p.l.Right()+5, y)
	}
}

func formatVolume(v float64) string {
	if m := v / 1e6; m >= 1 {
		return fmt.Sprintf("%.1fM", m)
	}
	return fmt.Sprintf("%.0f", v)
}

func (p *painter) xLabels() {
	count := len(p.visible)
	step := max(1, count/xLabelTicks)
	y := p.l.Bottom() + 15
	for i := 0; i < count; i += step {
		label := p.f.TimeFrame.Label(p.visible[i].Date)
		width := float64(p.s.MeasureText(label).Width())
		p.text(label, p.x(i)-width/2, y)
	}
}

func (p *painter) candles() {
	barWidth := p.l.BarWidth(len(p.visible))
	for i, b := range p.visible {
		x := p.x(i)
		yOpen := p.price.y(p.l.Price, b.Open)
		yClose := p.price.y(p.l.Price, b.Close)
		color := candleColor(b)

		// wick
		p.stroke(color, 1, nil)
		p.moveTo(x, p.price.y(p.l.Price, b.High))
		p.lineTo(x, p.price.y(p.l.Price, b.Low))
		p.s.Stroke()

		// body, a flat bar still gets a visible line
		top := math.Min(yOpen, yClose)
		height := math.Abs(yOpen - yClose)
		if height > 0 {
			p.s.SetFillColor(color)
			p.rect(x-barWidth/2, top, barWidth, math.Max(1, height))
			p.s.Fill()
			continue
		}
		p.stroke(color, 1, nil)
		p.moveTo(x-barWidth/2, top)
		p.lineTo(x+barWidth/2, top)
		p.s.Stroke()
	}
}

func candleColor(b model.Bar) drawing.Color {
	if b.IsUp() {
		return colorUp
	}
	return colorDown
}

// candleSignals : CCI crossings marked under the low (buy) or over the high (sell)
func (p *painter) candleSignals() {
	for _, c := range indicator.DetectCrossings(model.Field(p.visible, model.CCIOf)) {
		b := p.visible[c.Index]
		if c.Side == model.SideTypeBuy {
			p.arrow(p.x(c.Index), p.price.y(p.l.Price, b.Low)+candleArrowGap, true, colorBuy)
			continue
		}
		p.arrow(p.x(c.Index), p.price.y(p.l.Price, b.High)-candleArrowGap, false, colorSell)
	}
}

func (p *painter) movingAverages() {
	for _, key := range p.f.MASettings.Enabled() {
		full, ok := p.f.MovingAverages[key]
		if !ok || len(full) == 0 {
			continue
		}
		window := make(model.NullSeries, len(p.visible))
		for i := range window {
			window[i] = full.At(p.f.Range.Start + i)
		}
		p.stroke(maColors[key], 1, nil)
		p.polyline(window, p.l.Price, p.price)
	}
}

func (p *painter) volume() {
	barWidth := p.l.BarWidth(len(p.visible))
	band := p.l.Volume
	for i, b := range p.visible {
		height := float64(b.Volume) / p.vol.span() * band.Height
		p.s.SetFillColor(candleColor(b).WithAlpha(volumeAlpha(b.Amount, p.maxAmount)))
		p.rect(p.x(i)-barWidth/2, band.Bottom()-height, barWidth, height)
		p.s.Fill()
	}
}

// volumeAlpha : 0.3 + 0.7*amount/maxAmount, floor alpha without turnover
func volumeAlpha(amount, maxAmount float64) uint8 {
	ratio := minVolumeAlpha
	if maxAmount > 0 {
		ratio += (1 - minVolumeAlpha) * math.Max(0, math.Min(1, amount/maxAmount))
	}
	return uint8(math.Round(ratio * 255))
}

func (p *painter) cci() {
	band := p.l.CCI
	yUpper := p.cciScale.y(band, indicator.OverboughtLevel)
	yLower := p.cciScale.y(band, indicator.OversoldLevel)

	p.stroke(colorReference, 1.5, nil)
	p.moveTo(p.l.Left(), yUpper)
	p.lineTo(p.l.Right(), yUpper)
	p.moveTo(p.l.Left(), yLower)
	p.lineTo(p.l.Right(), yLower)
	p.s.Stroke()

	p.stroke(colorCCI, 2, nil)
	p.polyline(model.Field(p.visible, model.CCIOf), band, p.cciScale)

	for _, c := range indicator.DetectCrossings(model.Field(p.visible, model.CCIOf)) {
		if c.Side == model.SideTypeBuy {
			p.arrow(p.x(c.Index), yLower+lineArrowGap+arrowSize, true, colorBuy)
			continue
		}
		p.arrow(p.x(c.Index), yUpper-lineArrowGap-arrowSize, false, colorSell)
	}
}

func (p *painter) kdj() {
	band := p.l.KDJ

	p.stroke(colorReference, 1, dashed)
	for _, level := range []float64{20, 80} {
		y := p.kdjScale.y(band, level)
		p.moveTo(p.l.Left(), y)
		p.lineTo(p.l.Right(), y)
	}
	p.s.Stroke()

	lines := []struct {
		pick  func(model.Bar) null.Float
		color drawing.Color
	}{
		{model.KdjKOf, colorK},
		{model.KdjDOf, colorD},
		{model.KdjJOf, colorJ},
	}
	for _, line := range lines {
		p.stroke(line.color, 2, nil)
		p.polyline(model.Field(p.visible, line.pick), band, p.kdjScale)
	}
}

func (p *painter) title() {
	p.font(colorText, titleFontSize)
	p.text(fmt.Sprintf("%s - %s", p.f.Code, p.f.Name), p.l.Left(), p.l.Margin.Top-5)

	hint := "wheel to zoom, drag to pan"
	p.font(colorHint, labelFontSize)
	width := float64(p.s.MeasureText(hint).Width())
	p.text(hint, p.l.Width-p.l.Margin.Right-width, p.l.Margin.Top-5)
}

// polyline : one stroke per series; a null lifts the pen so gaps are never bridged
func (p *painter) polyline(values model.NullSeries, b Band, sc scale) {
	penDown, started := false, false
	for i, v := range values {
		v = model.Clean(v)
		if !v.Valid {
			penDown = false
			continue
		}
		x, y := p.x(i), sc.y(b, v.Float64)
		if penDown {
			p.lineTo(x, y)
		} else {
			p.moveTo(x, y)
			penDown, started = true, true
		}
	}
	if started {
		p.s.Stroke()
	}
}

// arrow : triangle standing on baseY, pointing up or down
func (p *painter) arrow(x, baseY float64, up bool, color drawing.Color) {
	tipY := baseY + arrowSize
	if up {
		tipY = baseY - arrowSize
	}
	p.s.SetFillColor(color)
	p.moveTo(x, tipY)
	p.lineTo(x-arrowSize/2, baseY)
	p.lineTo(x+arrowSize/2, baseY)
	p.s.Close()
	p.s.Fill()
}

func (p *painter) stroke(color drawing.Color, width float64, dash []float64) {
	p.s.SetStrokeColor(color)
	p.s.SetStrokeWidth(width)
	p.s.SetStrokeDashArray(dash)
}

func (p *painter) font(color drawing.Color, size float64) {
	p.s.SetFontColor(color)
	p.s.SetFontSize(size)
}

func (p *painter) rect(x, y, w, h float64) {
	p.moveTo(x, y)
	p.lineTo(x+w, y)
	p.lineTo(x+w, y+h)
	p.lineTo(x, y+h)
	p.s.Close()
}

func (p *painter) moveTo(x, y float64) {
	p.s.MoveTo(px(x), px(y))
}

func (p *painter) lineTo(x, y float64) {
	p.s.LineTo(px(x), px(y))
}

func (p *painter) text(body string, x, y float64) {
	p.s.Text(body, px(x), px(y))
}

func px(v float64) int {
	return int(math.Round(v))
}
