package chartview

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/model"
)

// weekdays : n weekday bars starting at from
func weekdays(n int, from time.Time) []model.Bar {
	bars := make([]model.Bar, 0, n)
	for d := from; len(bars) < n; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		price := 20 + float64(len(bars)%23)/2
		bars = append(bars, model.Derive(model.Bar{
			Date: d, Open: price, High: price + 1, Low: price - 1, Close: price + 0.5,
			PreClose: price, Volume: 1_000_000, Amount: 2e7, Turn: 1.2,
		}))
	}
	return bars
}

func newTestSession(now time.Time) *Session {
	return NewRegistry(WithClock(func() time.Time { return now })).Create()
}

func TestSession_MonthlyScenario(t *testing.T) {
	daily := weekdays(400, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	now := daily[len(daily)-1].Date
	s := newTestSession(now)

	s.Load("sh.600000", "PF Bank", daily)
	st := s.State()
	assert.Equal(t, 400, st.Bars)
	assert.Equal(t, 399, st.Range.End)
	assert.InDelta(t, 260, st.Range.Count(), 5, "about a year of trading days")

	s.SetTimeFrame(model.Monthly)
	st = s.State()
	assert.InDelta(t, 18, st.Bars, 1)

	// the monthly window covers the last twelve months only
	f := s.Frame()
	yearAgo := now.AddDate(-1, 0, 0)
	assert.Equal(t, st.Bars-1, st.Range.End)
	assert.InDelta(t, 12, st.Range.Count(), 1)
	assert.False(t, f.Bars[st.Range.Start].Date.Before(yearAgo))
	assert.True(t, f.Bars[st.Range.Start-1].Date.Before(yearAgo))

	whole := model.ViewportRange{Start: 0, End: st.Bars - 1}
	prev := st.Range.Span()
	for i := 0; i < 20 && s.State().Range != whole; i++ {
		_, err := s.Dispatch(Event{Type: EventWheel, X: 600, Y: 100, DeltaY: 100})
		require.NoError(t, err)
		r := s.State().Range
		require.GreaterOrEqual(t, r.Start, 0)
		require.LessOrEqual(t, r.End, st.Bars-1)
		require.GreaterOrEqual(t, r.Span(), prev, "zoom-out never narrows the window")
		prev = r.Span()
	}
	assert.Equal(t, whole, s.State().Range)
}

func TestSession_DailyZoomOutReachesWholeSeries(t *testing.T) {
	daily := weekdays(400, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := newTestSession(daily[len(daily)-1].Date)
	s.Load("sz.000001", "Ping An", daily)

	prev := s.State().Range.Span()
	for i := 0; i < 100; i++ {
		_, err := s.Dispatch(Event{Type: EventWheel, X: 900, Y: 100, DeltaY: 1})
		require.NoError(t, err)
		span := s.State().Range.Span()
		require.GreaterOrEqual(t, span, prev)
		prev = span
	}
	assert.Equal(t, model.ViewportRange{Start: 0, End: 399}, s.State().Range)
}

func TestSession_TimeFrameResetsWindowAndHover(t *testing.T) {
	daily := weekdays(300, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := newTestSession(daily[len(daily)-1].Date)
	s.Load("sh.600000", "PF Bank", daily)

	_, err := s.Dispatch(Event{Type: EventMove, X: 600, Y: 100})
	require.NoError(t, err)
	require.NotNil(t, s.State().Hover)

	s.SetTimeFrame(model.Weekly)
	st := s.State()
	assert.Nil(t, st.Hover)
	assert.Equal(t, model.Weekly, st.TimeFrame)
	assert.Equal(t, st.Bars-1, st.Range.End)
	assert.Less(t, st.Bars, 300)
}

func TestSession_Dispatch(t *testing.T) {
	daily := weekdays(100, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := newTestSession(daily[len(daily)-1].Date)
	s.Load("sh.600000", "PF Bank", daily)

	changed, err := s.Dispatch(Event{Type: EventDown, X: 600, Y: 100})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "dragging", s.State().Gesture)

	_, err = s.Dispatch(Event{Type: EventUp})
	require.NoError(t, err)
	assert.Equal(t, "idle", s.State().Gesture)

	_, err = s.Dispatch(Event{Type: "pinch"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestSession_MovingAverageToggles(t *testing.T) {
	s := newTestSession(day0)
	s.Load("sh.600000", "PF Bank", weekdays(150, day0))

	unknown := s.SetMovingAverages(map[string]bool{"ma5": false, "ma250": true})
	assert.Equal(t, []string{"ma250"}, unknown)

	f := s.Frame()
	assert.False(t, f.MASettings["ma5"])
	assert.Contains(t, f.MovingAverages, "ma5", "averages stay cached while hidden")
	assert.Contains(t, f.MovingAverages, "ma120")
}

func TestSession_FrameHoverIsCopied(t *testing.T) {
	daily := weekdays(50, day0)
	s := newTestSession(day0)
	s.Load("sh.600000", "PF Bank", daily)
	_, _ = s.Dispatch(Event{Type: EventMove, X: 600, Y: 100})

	f := s.Frame()
	require.NotNil(t, f.Hover)
	f.Hover.DataIndex = -1
	assert.NotEqual(t, -1, s.State().Hover.DataIndex)
}

func TestSession_RenderPNG(t *testing.T) {
	daily := weekdays(120, day0)
	s := newTestSession(day0)
	s.Load("sh.600000", "PF Bank", daily)
	_, _ = s.Dispatch(Event{Type: EventMove, X: 600, Y: 100})

	var buf bytes.Buffer
	require.NoError(t, s.RenderPNG(&buf, 0, 0))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	first := s.surface

	buf.Reset()
	require.NoError(t, s.RenderPNG(&buf, 1200, 800))
	assert.Same(t, first, s.surface, "same size repaints in place")

	buf.Reset()
	require.NoError(t, s.RenderPNG(&buf, 900, 600))
	assert.NotSame(t, first, s.surface)
	st := s.State()
	assert.Equal(t, 900, st.Width)
	assert.Equal(t, 600, st.Height)

	assert.ErrorIs(t, s.RenderPNG(&buf, 50, 50), ErrSurfaceTooSmall)
	assert.Equal(t, 900, s.State().Width, "failed resize keeps the old size")
}

func TestSession_RenderPage(t *testing.T) {
	s := newTestSession(day0)
	s.Load("sh.600000", "PF Bank", weekdays(80, day0))

	var buf bytes.Buffer
	require.NoError(t, s.RenderPage(&buf))
	html := buf.String()
	assert.Contains(t, html, "sh.600000 - PF Bank")
	assert.Contains(t, html, "echarts")
}
