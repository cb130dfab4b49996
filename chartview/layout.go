package chartview

import (
	"math"

	"stockwatch/model"
)

// Margin : blank border around the plotting area, in pixels
type Margin struct {
	Top, Right, Bottom, Left float64
}

var DefaultMargin = Margin{Top: 20, Right: 50, Bottom: 50, Left: 60}

// pane height shares of the plotting area
const (
	priceShare  = 0.35
	volumeShare = 0.20
	cciShare    = 0.20
	kdjShare    = 0.20
	gapShare    = 0.02
)

// Band : vertical extent of one pane
type Band struct {
	Pane   model.Pane
	Top    float64
	Height float64
}

func (b Band) Bottom() float64 {
	return b.Top + b.Height
}

func (b Band) Contains(y float64) bool {
	return y >= b.Top && y <= b.Bottom()
}

// Layout : pixel geometry of the four stacked panes for one surface size
type Layout struct {
	Width, Height float64
	Margin        Margin

	Price  Band
	Volume Band
	CCI    Band
	KDJ    Band
}

func NewLayout(width, height int) Layout {
	l := Layout{Width: float64(width), Height: float64(height), Margin: DefaultMargin}

	chartHeight := l.ChartHeight()
	gap := chartHeight * gapShare

	l.Price = Band{Pane: model.PanePrice, Top: l.Margin.Top, Height: chartHeight * priceShare}
	l.Volume = Band{Pane: model.PaneVolume, Top: l.Price.Bottom() + gap, Height: chartHeight * volumeShare}
	l.CCI = Band{Pane: model.PaneCCI, Top: l.Volume.Bottom() + gap, Height: chartHeight * cciShare}
	l.KDJ = Band{Pane: model.PaneKDJ, Top: l.CCI.Bottom() + gap, Height: chartHeight * kdjShare}
	return l
}

func (l Layout) ChartWidth() float64 {
	return l.Width - l.Margin.Left - l.Margin.Right
}

func (l Layout) ChartHeight() float64 {
	return l.Height - l.Margin.Top - l.Margin.Bottom
}

func (l Layout) Left() float64  { return l.Margin.Left }
func (l Layout) Right() float64 { return l.Margin.Left + l.ChartWidth() }

// Bottom : lower edge of the last pane
func (l Layout) Bottom() float64 { return l.KDJ.Bottom() }

// Usable : false when the margins leave no room to plot
func (l Layout) Usable() bool {
	return l.ChartWidth() > 0 && l.ChartHeight() > 0
}

func (l Layout) Bands() []Band {
	return []Band{l.Price, l.Volume, l.CCI, l.KDJ}
}

// InPlot : point lies inside the plotting rectangle (gaps included)
func (l Layout) InPlot(x, y float64) bool {
	return x >= l.Left() && x <= l.Right() && y >= l.Margin.Top && y <= l.Bottom()
}

// PaneAt : pane under y, PaneNone in the gaps or outside
func (l Layout) PaneAt(y float64) model.Pane {
	for _, b := range l.Bands() {
		if b.Contains(y) {
			return b.Pane
		}
	}
	return model.PaneNone
}

// X : horizontal position of the i-th visible bar, bars spread edge to edge
func (l Layout) X(i, count int) float64 {
	if count <= 1 {
		return l.Left() + l.ChartWidth()/2
	}
	return l.Left() + float64(i)*l.ChartWidth()/float64(count-1)
}

// Index : nearest visible bar for x, clamped to [0, count-1]
func (l Layout) Index(x float64, count int) int {
	if count <= 1 {
		return 0
	}
	i := int(math.Round((x - l.Left()) / l.ChartWidth() * float64(count-1)))
	return max(0, min(count-1, i))
}

// PixelsPerBar : horizontal distance between neighbouring bars
func (l Layout) PixelsPerBar(count int) float64 {
	if count <= 1 {
		return l.ChartWidth()
	}
	return l.ChartWidth() / float64(count-1)
}

// BarWidth : candle body and volume bar width
func (l Layout) BarWidth(count int) float64 {
	if count <= 0 {
		return 1
	}
	return math.Max(1, l.ChartWidth()/float64(count)-1)
}

// scale : value range mapped onto a band, top is hi
type scale struct {
	lo, hi float64
}

func (s scale) span() float64 {
	if d := s.hi - s.lo; d != 0 {
		return d
	}
	return 1
}

func (s scale) y(b Band, v float64) float64 {
	return b.Top + (s.hi-v)/s.span()*b.Height
}
