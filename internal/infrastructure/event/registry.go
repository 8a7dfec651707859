package event

import (
	"sync"

	"github.com/sparkcode/dashboard/internal/domain/document"
)

// listenerRegistry holds the change listeners of a feed.
type listenerRegistry struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]func(document.ChangeNotice)
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{listeners: make(map[uint64]func(document.ChangeNotice))}
}

// add registers fn and returns its id
func (r *listenerRegistry) add(fn func(document.ChangeNotice)) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.listeners[r.nextID] = fn
	return r.nextID
}

// remove drops the listener with id; unknown ids are ignored
func (r *listenerRegistry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listeners, id)
}

// snapshot returns the current listeners so they can be called without the lock
func (r *listenerRegistry) snapshot() []func(document.ChangeNotice) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]func(document.ChangeNotice), 0, len(r.listeners))
	for _, fn := range r.listeners {
		out = append(out, fn)
	}
	return out
}

func (r *listenerRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}
