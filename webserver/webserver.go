package webserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"stockwatch/chartview"
	"stockwatch/feed"
	"stockwatch/model"
	fiberhelpers "stockwatch/utils/fiberhelper"
	"stockwatch/utils/fiberhelper/middleware"
	"stockwatch/utils/log"
)

var ErrSessionNotFound = errors.New("chart session not found")

// WebServer : HTTP host of the chart sessions
type WebServer struct {
	registry *chartview.Registry
	supplier feed.Supplier
	loader   *feed.Loader
	hub      *feed.Hub
	timeout  time.Duration

	mu            sync.Mutex
	subscriptions map[string]func()
}

type Option func(*WebServer)

// WithHub : sessions follow refreshed series published on hub
func WithHub(hub *feed.Hub) Option {
	return func(ws *WebServer) { ws.hub = hub }
}

// WithFetchTimeout : upper bound of one supplier round trip
func WithFetchTimeout(timeout time.Duration) Option {
	return func(ws *WebServer) { ws.timeout = timeout }
}

func NewWebServer(registry *chartview.Registry, supplier feed.Supplier, opts ...Option) *WebServer {
	ws := &WebServer{
		registry:      registry,
		supplier:      supplier,
		loader:        feed.NewLoader(supplier),
		subscriptions: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(ws)
	}
	return ws
}

// App : fiber app with every route registered
func (ws *WebServer) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          fiberhelpers.NewErrorHandler(statusOf),
		DisableStartupMessage: true,
	})
	app.Use(fiberhelpers.NewRecover())
	app.Use(middleware.LogMiddleware("/healthz"))

	app.Get("/healthz", ws.health)
	app.Get("/instruments/:code", ws.instrument)

	sessions := app.Group("/sessions")
	sessions.Post("/", ws.createSession)
	sessions.Get("/:id", ws.getSession)
	sessions.Delete("/:id", ws.deleteSession)
	sessions.Put("/:id/instrument", ws.changeInstrument)
	sessions.Put("/:id/frame", ws.changeFrame)
	sessions.Put("/:id/ma", ws.changeMovingAverages)
	sessions.Post("/:id/events", ws.dispatch)
	sessions.Get("/:id/chart.png", ws.chartPNG)
	sessions.Get("/:id/echarts", ws.echarts)
	return app
}

// Forget : releases what the server holds for a removed session
func (ws *WebServer) Forget(id string) {
	ws.loader.Forget(id)
	ws.unsubscribe(id)
}

// Close : drops every hub subscription
func (ws *WebServer) Close() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for id, unsubscribe := range ws.subscriptions {
		unsubscribe()
		delete(ws.subscriptions, id)
	}
}

func (ws *WebServer) session(id string) (*chartview.Session, error) {
	s, ok := ws.registry.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// load : fetches code for the session and swaps its series in, the session is
// untouched when the fetch fails or is overtaken
func (ws *WebServer) load(ctx context.Context, s *chartview.Session, code string) error {
	if ws.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ws.timeout)
		defer cancel()
	}

	quote, err := ws.loader.Load(ctx, s.ID(), code)
	if err != nil {
		return err
	}
	s.Load(quote.Code, quote.Name, quote.Bars)
	log.Infof("session %s: loaded %s (%d bars)", s.ID(), quote.Code, len(quote.Bars))

	ws.follow(s, quote.Code)
	return nil
}

// follow : reloads the session whenever the hub publishes a fresher series of code.
// A session that already moved on to another code is left alone.
func (ws *WebServer) follow(s *chartview.Session, code string) {
	if ws.hub == nil {
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if s.State().Code != code {
		return
	}
	if unsubscribe, ok := ws.subscriptions[s.ID()]; ok {
		unsubscribe()
		delete(ws.subscriptions, s.ID())
	}

	ws.subscriptions[s.ID()] = ws.hub.Subscribe(code, func(quote feed.Quote) {
		if current := s.State().Code; current != quote.Code {
			return
		}
		s.Load(quote.Code, quote.Name, quote.Bars)
		log.Debugf("session %s: refreshed %s", s.ID(), quote.Code)
	})
}

func (ws *WebServer) unsubscribe(id string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if unsubscribe, ok := ws.subscriptions[id]; ok {
		unsubscribe()
		delete(ws.subscriptions, id)
	}
}

func statusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, feed.ErrNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, model.ErrUnknownTimeFrame),
		errors.Is(err, chartview.ErrUnknownEvent),
		errors.Is(err, chartview.ErrSurfaceTooSmall),
		errors.Is(err, errMissingCode):
		return fiber.StatusBadRequest, true
	case errors.Is(err, feed.ErrSuperseded):
		return fiber.StatusConflict, true
	case errors.Is(err, feed.ErrSupplier), errors.Is(err, feed.ErrDecode):
		return fiber.StatusBadGateway, true
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, true
	}
	return 0, false
}
