package feed

import (
	"context"
	"sync"

	"stockwatch/model"
	"stockwatch/utils/log"
)

// QuoteConsumer : callback receiving a refreshed series
type QuoteConsumer func(Quote)

type subscription struct {
	id       uint64
	consumer QuoteConsumer
}

// Hub : fan-out of refreshed series to the subscribers of each code.
// Flow : New -> Subscribe -> Start -> Publish -> Stop
type Hub struct {
	updates       chan Quote
	subscriptions map[string][]subscription
	nextID        uint64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool

	mu sync.RWMutex
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		updates:       make(chan Quote, 100),
		subscriptions: make(map[string][]subscription),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
}

// Subscribe : registers consumer for code, the returned func removes it again
func (h *Hub) Subscribe(code string, consumer QuoteConsumer) (unsubscribe func()) {
	code = model.NormalizeCode(code)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.subscriptions[code] = append(h.subscriptions[code], subscription{id: id, consumer: consumer})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		subs := h.subscriptions[code]
		for i, sub := range subs {
			if sub.id == id {
				h.subscriptions[code] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(h.subscriptions[code]) == 0 {
			delete(h.subscriptions, code)
		}
	}
}

// Subscribers : number of consumers registered for code
func (h *Hub) Subscribers(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[model.NormalizeCode(code)])
}

// Publish : queues a quote, dropped once the hub is stopped
func (h *Hub) Publish(quote Quote) {
	select {
	case h.updates <- quote:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Start() {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go func() {
		defer close(h.done)
		for {
			select {
			case <-h.ctx.Done():
				return
			case quote := <-h.updates:
				h.deliver(quote)
			}
		}
	}()
}

func (h *Hub) Stop() {
	h.cancel()

	h.mu.RLock()
	started := h.started
	h.mu.RUnlock()
	if started {
		<-h.done
	}
}

func (h *Hub) deliver(quote Quote) {
	h.mu.RLock()
	subs := append([]subscription(nil), h.subscriptions[quote.Code]...)
	h.mu.RUnlock()

	log.Debugf("feed: delivering %s (%d bars) to %d subscribers", quote.Code, len(quote.Bars), len(subs))
	for _, sub := range subs {
		sub.consumer(quote)
	}
}
