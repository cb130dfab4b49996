package chartview

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Surface : the part of a go-chart renderer the chart draws with, plus its pixel size
type Surface interface {
	Size() (width, height int)

	SetStrokeColor(drawing.Color)
	SetFillColor(drawing.Color)
	SetStrokeWidth(width float64)
	SetStrokeDashArray(dashArray []float64)
	SetFontColor(drawing.Color)
	SetFontSize(size float64)

	MoveTo(x, y int)
	LineTo(x, y int)
	Close()
	Stroke()
	Fill()

	Text(body string, x, y int)
	MeasureText(body string) chart.Box
}

// PNGSurface : raster surface backed by go-chart's PNG renderer
type PNGSurface struct {
	chart.Renderer
	width  int
	height int
}

// NewPNGSurface : allocates a width x height raster with the default font loaded
func NewPNGSurface(width, height int) (*PNGSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceTooSmall, width, height)
	}
	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("create png renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load default font: %w", err)
	}
	r.SetFont(font)
	return &PNGSurface{Renderer: r, width: width, height: height}, nil
}

func (s *PNGSurface) Size() (int, int) {
	return s.width, s.height
}

// Encode : writes the current raster as PNG
func (s *PNGSurface) Encode(w io.Writer) error {
	return s.Renderer.Save(w)
}

// palette
var (
	colorUp        = drawing.ColorFromHex("ef5350")
	colorDown      = drawing.ColorFromHex("66bb6a")
	colorGrid      = drawing.ColorFromHex("eeeeee")
	colorAxis      = drawing.ColorFromHex("000000")
	colorText      = drawing.ColorFromHex("000000")
	colorHint      = drawing.ColorFromHex("666666")
	colorReference = drawing.ColorFromHex("888888")
	colorCCI       = drawing.ColorFromHex("4682b4")
	colorK         = drawing.ColorFromHex("ff0000")
	colorD         = drawing.ColorFromHex("00ff00")
	colorJ         = drawing.ColorFromHex("0000ff")
	colorBuy       = drawing.ColorFromHex("ff0000")
	colorSell      = drawing.ColorFromHex("00ff00")
	colorCrosshair = drawing.ColorFromHex("000000").WithAlpha(128)
	colorTooltip   = drawing.ColorFromHex("ffffff").WithAlpha(230)
	colorWhite     = drawing.ColorFromHex("ffffff")

	maColors = map[string]drawing.Color{
		"ma5":   drawing.ColorFromHex("ff0000"),
		"ma10":  drawing.ColorFromHex("00ff00"),
		"ma15":  drawing.ColorFromHex("0000ff"),
		"ma20":  drawing.ColorFromHex("ffa500"),
		"ma30":  drawing.ColorFromHex("ff00ff"),
		"ma60":  drawing.ColorFromHex("00ffff"),
		"ma120": drawing.ColorFromHex("ffa500"),
	}
)

var dashed = []float64{5, 5}
