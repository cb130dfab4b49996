package chartview

import (
	"math"

	"stockwatch/model"
)

type GestureState int

const (
	Idle GestureState = iota
	Dragging
)

func (s GestureState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// DragThreshold : horizontal moves shorter than this (pixels) are ignored while dragging
const DragThreshold = 2.0

// Controller : turns pointer gestures into Viewport transitions.
// It is not safe for concurrent use; Session serialises calls.
type Controller struct {
	view   *Viewport
	bars   []model.Bar
	layout Layout

	state     GestureState
	anchorX   float64
	downIndex int
}

func NewController(view *Viewport) *Controller {
	return &Controller{view: view}
}

// Attach : bars and geometry the next gestures are resolved against
func (c *Controller) Attach(bars []model.Bar, layout Layout) {
	c.bars = bars
	c.layout = layout
}

func (c *Controller) State() GestureState {
	return c.state
}

// DownIndex : displayed-bar index recorded by the last PointerDown
func (c *Controller) DownIndex() int {
	return c.downIndex
}

// Wheel : deltaY > 0 zooms out, deltaY < 0 zooms in, in either state
func (c *Controller) Wheel(x, y, deltaY float64) bool {
	if deltaY == 0 || c.view.Len() == 0 {
		return false
	}
	focus := 0.5
	if w := c.layout.ChartWidth(); w > 0 {
		focus = (x - c.layout.Left()) / w
	}
	return c.view.Zoom(deltaY < 0, focus)
}

// PointerDown : starts a drag when the pointer is inside the plot
func (c *Controller) PointerDown(x, y float64) bool {
	if c.view.Len() == 0 || !c.layout.InPlot(x, y) {
		return false
	}
	c.state = Dragging
	c.anchorX = x
	c.downIndex = c.view.Range.Start + c.layout.Index(x, c.view.Range.Count())
	return true
}

// PointerMove : pans while dragging, updates hover otherwise
func (c *Controller) PointerMove(x, y float64) bool {
	if c.state == Dragging {
		return c.drag(x)
	}
	return c.hover(x, y)
}

// PointerUp : ends a drag, no-op when idle
func (c *Controller) PointerUp() bool {
	if c.state != Dragging {
		return false
	}
	c.state = Idle
	return true
}

// PointerLeave : drops drag and hover state
func (c *Controller) PointerLeave() bool {
	changed := c.state == Dragging || c.view.Hover != nil
	c.state = Idle
	c.view.ClearHover()
	return changed
}

func (c *Controller) drag(x float64) bool {
	dx := x - c.anchorX
	if math.Abs(dx) < DragThreshold {
		return false
	}

	// dragging right brings earlier bars into view
	perBar := c.layout.PixelsPerBar(c.view.Range.Count())
	if perBar <= 0 {
		return false
	}
	shift := -int(dx / perBar)
	if shift == 0 {
		return false
	}
	c.anchorX = x
	return c.view.Pan(shift) != 0
}

func (c *Controller) hover(x, y float64) bool {
	visible := c.view.Visible(c.bars)
	if len(visible) == 0 || !c.layout.InPlot(x, y) {
		had := c.view.Hover != nil
		c.view.ClearHover()
		return had
	}

	i := c.layout.Index(x, len(visible))
	pane := c.layout.PaneAt(y)
	c.view.SetHover(&model.HoverInfo{
		DataIndex:      c.view.Range.Start + i,
		DataPoint:      visible[i],
		X:              x,
		Y:              y,
		IsInKLineArea:  pane == model.PanePrice,
		IsInVolumeArea: pane == model.PaneVolume,
		Pane:           pane,
	})
	return true
}
