package chartview

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/model"
)

// newTestController : 100 bars, window {50,99}, 1110x800 layout (chart width 1000)
func newTestController(t *testing.T) (*Controller, *Viewport, []model.Bar) {
	t.Helper()
	bars := dailyBars(100, day0)
	v := &Viewport{Range: model.ViewportRange{Start: 50, End: 99}, length: len(bars)}
	c := NewController(v)
	c.Attach(bars, NewLayout(1110, 800))
	return c, v, bars
}

func TestController_WheelZooms(t *testing.T) {
	c, v, _ := newTestController(t)

	assert.True(t, c.Wheel(560, 100, -120))
	assert.Equal(t, 45, v.Range.Span())

	assert.True(t, c.Wheel(560, 100, 120))
	assert.Greater(t, v.Range.Span(), 45)

	assert.False(t, c.Wheel(560, 100, 0))
}

func TestController_WheelWhileDragging(t *testing.T) {
	c, v, _ := newTestController(t)
	require.True(t, c.PointerDown(560, 100))
	assert.True(t, c.Wheel(560, 100, -120))
	assert.Equal(t, Dragging, c.State())
	assert.Equal(t, 45, v.Range.Span())
}

func TestController_DragPans(t *testing.T) {
	c, v, _ := newTestController(t)
	l := NewLayout(1110, 800)
	perBar := l.PixelsPerBar(v.Range.Count())

	assert.False(t, c.PointerDown(10, 100), "outside the plot")
	assert.Equal(t, Idle, c.State())

	require.True(t, c.PointerDown(560, 100))
	assert.Equal(t, Dragging, c.State())
	assert.Equal(t, 50+l.Index(560, 50), c.DownIndex())

	// jitter below the threshold
	assert.False(t, c.PointerMove(561, 100))
	assert.Equal(t, model.ViewportRange{Start: 50, End: 99}, v.Range)

	// dragging right shows earlier bars
	assert.True(t, c.PointerMove(560+3*perBar+1, 100))
	assert.Equal(t, model.ViewportRange{Start: 47, End: 96}, v.Range)

	// anchor moved, same distance again shifts again
	assert.True(t, c.PointerMove(560+6*perBar+2, 100))
	assert.Equal(t, model.ViewportRange{Start: 44, End: 93}, v.Range)

	// dragging left, clamped at the last bar
	assert.True(t, c.PointerMove(560-100*perBar, 100))
	assert.Equal(t, model.ViewportRange{Start: 50, End: 99}, v.Range)

	assert.Nil(t, v.Hover, "no hover while dragging")
	assert.True(t, c.PointerUp())
	assert.Equal(t, Idle, c.State())
	assert.False(t, c.PointerUp(), "no-op when idle")
}

func TestController_Hover(t *testing.T) {
	c, v, bars := newTestController(t)
	l := NewLayout(1110, 800)

	require.True(t, c.PointerMove(l.Left(), l.Price.Top+10))
	require.NotNil(t, v.Hover)
	assert.Equal(t, 50, v.Hover.DataIndex)
	assert.Equal(t, bars[50], v.Hover.DataPoint)
	assert.True(t, v.Hover.IsInKLineArea)
	assert.Equal(t, model.PanePrice, v.Hover.Pane)

	require.True(t, c.PointerMove(l.Right(), l.Volume.Top+5))
	assert.Equal(t, 99, v.Hover.DataIndex)
	assert.True(t, v.Hover.IsInVolumeArea)

	require.True(t, c.PointerMove(l.X(10, 50), l.KDJ.Top+5))
	assert.Equal(t, 60, v.Hover.DataIndex)
	assert.Equal(t, model.PaneKDJ, v.Hover.Pane)

	assert.True(t, c.PointerMove(5, 5), "outside clears")
	assert.Nil(t, v.Hover)
	assert.False(t, c.PointerMove(5, 5))
}

func TestController_LeaveClearsEverything(t *testing.T) {
	c, v, _ := newTestController(t)
	c.PointerMove(560, 100)
	require.NotNil(t, v.Hover)

	require.True(t, c.PointerDown(560, 100))
	assert.True(t, c.PointerLeave())
	assert.Equal(t, Idle, c.State())
	assert.Nil(t, v.Hover)

	// no drag survives: a move now hovers
	c.PointerMove(700, 100)
	assert.Equal(t, model.ViewportRange{Start: 50, End: 99}, v.Range)
	assert.NotNil(t, v.Hover)
}

func TestController_StaleWindowDoesNotHover(t *testing.T) {
	c, v, _ := newTestController(t)
	c.Attach(dailyBars(10, day0), NewLayout(1110, 800))
	assert.False(t, c.PointerMove(560, 100))
	assert.Nil(t, v.Hover)
}

func TestController_RandomEventsKeepInvariant(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	c, v, _ := newTestController(t)

	for i := 0; i < 2000; i++ {
		x, y := rnd.Float64()*1110, rnd.Float64()*800
		switch rnd.Intn(5) {
		case 0:
			c.Wheel(x, y, float64(rnd.Intn(3)-1)*100)
		case 1:
			c.PointerDown(x, y)
		case 2:
			c.PointerMove(x, y)
		case 3:
			c.PointerUp()
		default:
			c.PointerLeave()
		}
		assertInvariant(t, v)
	}
}
