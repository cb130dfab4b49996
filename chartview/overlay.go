package chartview

import (
	"fmt"

	"github.com/guregu/null/v6"

	"stockwatch/model"
)

const (
	tooltipWidth   = 200.0
	tooltipPadding = 5.0
	tooltipLine    = 15.0
	tooltipOffset  = 10.0
)

// crosshair : dashed vertical through every pane, horizontal only in the hovered one
func (p *painter) crosshair(h model.HoverInfo) {
	p.stroke(colorCrosshair, 1, dashed)
	for _, b := range p.l.Bands() {
		p.moveTo(h.X, b.Top)
		p.lineTo(h.X, b.Bottom())
	}
	for _, b := range p.l.Bands() {
		if b.Pane == h.Pane {
			p.moveTo(p.l.Left(), h.Y)
			p.lineTo(p.l.Right(), h.Y)
		}
	}
	p.s.Stroke()
}

// tooltip : info box beside the pointer, flipped left/up past the surface middle
func (p *painter) tooltip(h model.HoverInfo) {
	lines := TooltipLines(h.DataPoint)
	height := float64(len(lines)+1) * tooltipLine
	x, y := tooltipOrigin(h.X, h.Y, height, p.l.Width, p.l.Height)

	p.s.SetFillColor(colorTooltip)
	p.stroke(colorAxis, 1, nil)
	p.rect(x, y, tooltipWidth, height)
	p.s.Fill()
	p.rect(x, y, tooltipWidth, height)
	p.s.Stroke()

	p.font(colorText, labelFontSize)
	for i, line := range lines {
		p.text(line, x+tooltipPadding, y+float64(i+1)*tooltipLine)
	}
}

// tooltipOrigin : box corner beside the pointer, flipped past the centre and
// kept on the surface
func tooltipOrigin(x, y, height, width, surfaceHeight float64) (float64, float64) {
	ox, oy := x+tooltipOffset, y+tooltipOffset
	if x > width/2 {
		ox = x - tooltipWidth - tooltipOffset
	}
	if y > surfaceHeight/2 {
		oy = y - height - tooltipOffset
	}
	ox = max(0, min(ox, width-tooltipWidth))
	oy = max(0, min(oy, surfaceHeight-height))
	return ox, oy
}

// TooltipLines : every field of b, absent indicators as N/A
func TooltipLines(b model.Bar) []string {
	return []string{
		"Date: " + b.Date.Format("2006-1-2"),
		fmt.Sprintf("Open: %.2f", b.Open),
		fmt.Sprintf("High: %.2f", b.High),
		fmt.Sprintf("Low: %.2f", b.Low),
		fmt.Sprintf("Close: %.2f", b.Close),
		fmt.Sprintf("Volume: %.2fM", float64(b.Volume)/1e6),
		fmt.Sprintf("Amount: %.2fM", b.Amount/1e6),
		fmt.Sprintf("Turn: %.2f%%", b.Turn),
		fmt.Sprintf("Change: %+.2f", b.Change),
		fmt.Sprintf("Change%%: %+.2f%%", b.ChangePercent),
		fmt.Sprintf("PE: %.2f", b.PeTTM),
		fmt.Sprintf("PB: %.2f", b.PbMRQ),
		fmt.Sprintf("PS: %.2f", b.PsTTM),
		fmt.Sprintf("PCF: %.2f", b.PcfNcfTTM),
		"CCI: " + formatNull(b.CCI),
		fmt.Sprintf("K: %s, D: %s, J: %s", formatNull(b.KdjK), formatNull(b.KdjD), formatNull(b.KdjJ)),
	}
}

func formatNull(v null.Float) string {
	v = model.Clean(v)
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
