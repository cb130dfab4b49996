package chartview

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry : live sessions by id
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	width, height int
	now           func() time.Time
	onRemove      func(id string)
}

type RegistryOption func(*Registry)

// WithClock : time source for window resets and idle tracking
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithSurfaceSize : size new sessions start with
func WithSurfaceSize(width, height int) RegistryOption {
	return func(r *Registry) { r.width, r.height = width, height }
}

// WithOnRemove : called after a session is deleted or swept
func WithOnRemove(fn func(id string)) RegistryOption {
	return func(r *Registry) { r.onRemove = fn }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		width:    1200,
		height:   800,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create : mounts an empty session, callers Load it with data
func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.width, r.height, r.now)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// Delete : unmounts a session, false when it did not exist
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.removed(id)
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Sweep : drops sessions unused for longer than idle, returns how many
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var removed []string
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	r.mu.Unlock()

	for _, id := range removed {
		r.removed(id)
	}
	return len(removed)
}

func (r *Registry) removed(id string) {
	if r.onRemove != nil {
		r.onRemove(id)
	}
}
