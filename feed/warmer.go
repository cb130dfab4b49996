package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"stockwatch/model"
	"stockwatch/utils/collection"
	"stockwatch/utils/log"
)

// Refresher : re-fetches a series bypassing any cached copy
type Refresher interface {
	Refresh(ctx context.Context, code string) (Quote, error)
}

// Warmer : cron job keeping the configured instruments fresh in the cache and
// announcing every refreshed series on the hub
type Warmer struct {
	cron      *cron.Cron
	refresher Refresher
	hub       *Hub
	codes     []string
	timeout   time.Duration
}

func NewWarmer(refresher Refresher, hub *Hub, codes []string, timeout time.Duration) *Warmer {
	normalized := collection.Filter(collection.Map(codes, model.NormalizeCode), func(code string) bool {
		return code != ""
	})
	return &Warmer{
		cron:      cron.New(cron.WithSeconds()),
		refresher: refresher,
		hub:       hub,
		codes:     normalized,
		timeout:   timeout,
	}
}

// Schedule : registers the refresh job, spec uses the six-field (seconds) syntax
func (w *Warmer) Schedule(spec string) error {
	if _, err := w.cron.AddFunc(spec, func() {
		w.RefreshAll(context.Background())
	}); err != nil {
		return fmt.Errorf("register warm job %q: %w", spec, err)
	}
	return nil
}

func (w *Warmer) Start() {
	w.cron.Start()
	log.Infof("feed: warmer started for %d instruments", len(w.codes))
}

func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
	log.Infof("feed: warmer stopped")
}

// RefreshAll : refreshes every configured code, returns how many succeeded
func (w *Warmer) RefreshAll(ctx context.Context) int {
	refreshed := 0
	for _, code := range w.codes {
		if err := w.refresh(ctx, code); err != nil {
			log.Warnf("feed: warm %s: %v", code, err)
			continue
		}
		refreshed++
	}
	return refreshed
}

func (w *Warmer) refresh(ctx context.Context, code string) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	quote, err := w.refresher.Refresh(ctx, code)
	if err != nil {
		return err
	}
	if w.hub != nil {
		w.hub.Publish(quote)
	}
	return nil
}
