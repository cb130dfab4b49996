package chartview

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"stockwatch/aggregate"
	"stockwatch/indicator"
	"stockwatch/model"
)

var ErrUnknownEvent = errors.New("unknown pointer event")

type EventType string

const (
	EventWheel EventType = "wheel"
	EventDown  EventType = "down"
	EventMove  EventType = "move"
	EventUp    EventType = "up"
	EventLeave EventType = "leave"
)

// Event : one pointer event in surface pixels
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	DeltaY float64   `json:"deltaY"`
}

// State : read-only view of a session
type State struct {
	ID         string              `json:"id"`
	Code       string              `json:"code"`
	Name       string              `json:"name"`
	TimeFrame  model.TimeFrame     `json:"timeFrame"`
	Bars       int                 `json:"bars"`
	Range      model.ViewportRange `json:"range"`
	Hover      *model.HoverInfo    `json:"hover,omitempty"`
	Gesture    string              `json:"gesture"`
	MASettings model.MASettings    `json:"maSettings"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
}

// Session : all state of one mounted chart. Methods are safe for concurrent
// use; each call completes before the next one starts.
type Session struct {
	mu sync.Mutex

	id   string
	code string
	name string

	original []model.Bar
	frame    model.TimeFrame
	bars     []model.Bar
	averages map[string]model.NullSeries
	settings model.MASettings

	view       Viewport
	controller *Controller

	width, height int
	layout        Layout
	surface       *PNGSurface

	now       func() time.Time
	touchedAt time.Time
}

func newSession(id string, width, height int, now func() time.Time) *Session {
	s := &Session{
		id:       id,
		frame:    model.Daily,
		settings: model.DefaultMASettings(),
		width:    width,
		height:   height,
		layout:   NewLayout(width, height),
		now:      now,
	}
	s.controller = NewController(&s.view)
	s.touchedAt = now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Load : replaces the instrument and its daily series, then re-derives the display
func (s *Session) Load(code, name string, daily []model.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.code, s.name = code, name
	s.original = model.Sorted(daily)
	s.rebuild()
}

// SetTimeFrame : re-aggregates the original series and resets the window
func (s *Session) SetTimeFrame(frame model.TimeFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame = frame
	s.rebuild()
}

// SetMovingAverages : applies visibility toggles, unknown keys are returned untouched
func (s *Session) SetMovingAverages(toggles map[string]bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unknown []string
	s.settings, unknown = s.settings.Merge(toggles)
	s.touch()
	return unknown
}

// Resize : new layout for a new surface size; an unchanged size keeps everything
func (s *Session) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resize(width, height)
}

// Dispatch : routes one pointer event through the controller.
// changed reports whether a repaint is needed.
func (s *Session) Dispatch(e Event) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	switch e.Type {
	case EventWheel:
		return s.controller.Wheel(e.X, e.Y, e.DeltaY), nil
	case EventDown:
		return s.controller.PointerDown(e.X, e.Y), nil
	case EventMove:
		return s.controller.PointerMove(e.X, e.Y), nil
	case EventUp:
		return s.controller.PointerUp(), nil
	case EventLeave:
		return s.controller.PointerLeave(), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
}

// Frame : inputs of the next paint
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotFrame()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		ID:         s.id,
		Code:       s.code,
		Name:       s.name,
		TimeFrame:  s.frame,
		Bars:       len(s.bars),
		Range:      s.view.Range,
		Hover:      s.view.Hover,
		Gesture:    s.controller.State().String(),
		MASettings: s.settings,
		Width:      s.width,
		Height:     s.height,
	}
}

// RenderPNG : repaints the session surface, resizing it first when width or
// height differ, and encodes it to w. Zero width or height keeps the current size.
func (s *Session) RenderPNG(w io.Writer, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width <= 0 {
		width = s.width
	}
	if height <= 0 {
		height = s.height
	}
	if err := s.resize(width, height); err != nil {
		return err
	}
	if s.surface == nil {
		surface, err := NewPNGSurface(s.width, s.height)
		if err != nil {
			return err
		}
		s.surface = surface
	}

	if err := Render(s.surface, s.snapshotFrame()); err != nil {
		return fmt.Errorf("render %s: %w", s.code, err)
	}
	return s.surface.Encode(w)
}

// RenderPage : interactive page of the visible window
func (s *Session) RenderPage(w io.Writer) error {
	return BuildPage(s.Frame()).Render(w)
}

func (s *Session) touch() {
	s.touchedAt = s.now()
}

// idleSince : last time the session was used
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.touchedAt
}

func (s *Session) resize(width, height int) error {
	if width == s.width && height == s.height {
		return nil
	}
	l := NewLayout(width, height)
	if !l.Usable() {
		return fmt.Errorf("%w: %dx%d", ErrSurfaceTooSmall, width, height)
	}
	s.width, s.height, s.layout = width, height, l
	s.surface = nil
	s.controller.Attach(s.bars, s.layout)
	s.touch()
	return nil
}

// rebuild : displayed bars, cached averages and a fresh window from the original series
func (s *Session) rebuild() {
	s.bars = aggregate.Aggregate(s.original, s.frame)
	s.averages = indicator.MovingAverages(s.bars, model.DefaultMASettings())
	s.view.Reset(s.bars, s.now())
	s.controller = NewController(&s.view)
	s.controller.Attach(s.bars, s.layout)
	s.touch()
}

func (s *Session) snapshotFrame() Frame {
	var hover *model.HoverInfo
	if s.view.Hover != nil {
		h := *s.view.Hover
		hover = &h
	}
	return Frame{
		Code:           s.code,
		Name:           s.name,
		TimeFrame:      s.frame,
		Bars:           s.bars,
		MovingAverages: s.averages,
		MASettings:     s.settings,
		Range:          s.view.Range,
		Hover:          hover,
	}
}
