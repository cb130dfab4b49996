package chartview

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"stockwatch/model"
)

type pathOp struct {
	kind byte // 'M', 'L', 'Z'
	x, y int
}

type recordedPath struct {
	ops   []pathOp
	color drawing.Color
	width float64
	dash  []float64
}

// subpaths : ops split at every MoveTo
func (p recordedPath) subpaths() [][]pathOp {
	var out [][]pathOp
	for _, op := range p.ops {
		if op.kind == 'M' || len(out) == 0 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], op)
	}
	return out
}

// recorder : Surface that keeps every stroked and filled path
type recorder struct {
	width, height int

	strokeColor drawing.Color
	fillColor   drawing.Color
	strokeWidth float64
	dash        []float64

	current []pathOp
	strokes []recordedPath
	fills   []recordedPath
	texts   []string
}

var _ Surface = (*recorder)(nil)

func newRecorder(width, height int) *recorder {
	return &recorder{width: width, height: height}
}

func (r *recorder) Size() (int, int)                  { return r.width, r.height }
func (r *recorder) SetStrokeColor(c drawing.Color)    { r.strokeColor = c }
func (r *recorder) SetFillColor(c drawing.Color)      { r.fillColor = c }
func (r *recorder) SetStrokeWidth(w float64)          { r.strokeWidth = w }
func (r *recorder) SetStrokeDashArray(dash []float64) { r.dash = dash }
func (r *recorder) SetFontColor(drawing.Color)        {}
func (r *recorder) SetFontSize(float64)               {}
func (r *recorder) MoveTo(x, y int)                   { r.current = append(r.current, pathOp{'M', x, y}) }
func (r *recorder) LineTo(x, y int)                   { r.current = append(r.current, pathOp{'L', x, y}) }
func (r *recorder) Close()                            { r.current = append(r.current, pathOp{kind: 'Z'}) }
func (r *recorder) Text(body string, _, _ int)        { r.texts = append(r.texts, body) }
func (r *recorder) MeasureText(body string) chart.Box {
	return chart.Box{Right: 6 * len(body), Bottom: 10}
}

func (r *recorder) Stroke() {
	r.strokes = append(r.strokes, recordedPath{ops: r.current, color: r.strokeColor, width: r.strokeWidth, dash: r.dash})
	r.current = nil
}

func (r *recorder) Fill() {
	r.fills = append(r.fills, recordedPath{ops: r.current, color: r.fillColor})
	r.current = nil
}

func (r *recorder) empty() bool {
	return len(r.strokes) == 0 && len(r.fills) == 0 && len(r.texts) == 0 && len(r.current) == 0
}

func (r *recorder) strokesWith(color drawing.Color, width float64) []recordedPath {
	var out []recordedPath
	for _, p := range r.strokes {
		if p.color == color && p.width == width {
			out = append(out, p)
		}
	}
	return out
}

func (r *recorder) fillsWith(color drawing.Color) []recordedPath {
	var out []recordedPath
	for _, p := range r.fills {
		if p.color == color {
			out = append(out, p)
		}
	}
	return out
}

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// dailyBars : n consecutive calendar days ending the day before end
func dailyBars(n int, end time.Time) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		price := 10 + float64(i%17)
		bars[i] = model.Derive(model.Bar{
			Date:     end.AddDate(0, 0, i-n),
			Open:     price,
			High:     price + 2,
			Low:      price - 2,
			Close:    price + 1,
			PreClose: price,
			Volume:   int64(1000 + i),
			Amount:   float64(10000 + i),
		})
	}
	return bars
}

func withCCI(bars []model.Bar, values ...any) []model.Bar {
	for i, v := range values {
		if f, ok := v.(float64); ok {
			bars[i].CCI = null.FloatFrom(f)
		}
	}
	return bars
}
