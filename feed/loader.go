package feed

import (
	"context"
	"sync"
)

// Loader : last request wins per key. A new Load for the same key cancels the
// one in flight, and a result that arrives after being overtaken is dropped.
type Loader struct {
	supplier Supplier

	mu       sync.Mutex
	inflight map[string]*ticket
	next     uint64
}

type ticket struct {
	generation uint64
	cancel     context.CancelFunc
}

func NewLoader(supplier Supplier) *Loader {
	return &Loader{supplier: supplier, inflight: make(map[string]*ticket)}
}

// Load : fetches the series of code on behalf of key (typically a session id)
func (l *Loader) Load(ctx context.Context, key, code string) (Quote, error) {
	ctx, own := l.issue(ctx, key)
	defer l.release(key, own)

	quote, err := l.supplier.Series(ctx, code)
	if !l.current(key, own) {
		return Quote{}, ErrSuperseded
	}
	if err != nil {
		return Quote{}, err
	}
	return quote, nil
}

// Forget : cancels whatever is in flight for key
func (l *Loader) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.inflight[key]; ok {
		t.cancel()
		delete(l.inflight, key)
	}
}

func (l *Loader) issue(parent context.Context, key string) (context.Context, *ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 1) overtake the previous request
	if prev, ok := l.inflight[key]; ok {
		prev.cancel()
	}

	// 2) register the new one
	ctx, cancel := context.WithCancel(parent)
	l.next++
	t := &ticket{generation: l.next, cancel: cancel}
	l.inflight[key] = t
	return ctx, t
}

func (l *Loader) current(key string, t *ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.inflight[key]
	return ok && cur.generation == t.generation
}

func (l *Loader) release(key string, t *ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t.cancel()
	if cur, ok := l.inflight[key]; ok && cur.generation == t.generation {
		delete(l.inflight, key)
	}
}
