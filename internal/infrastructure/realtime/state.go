package realtime

import "sync"

// ViewState holds the latest mapped snapshot of one subscription. Readers
// always see a whole snapshot, never a mix of two.
type ViewState[T any] struct {
	mu      sync.RWMutex
	items   []T
	version uint64
	loading bool
	err     error
	fails   uint64
	changed chan struct{}
}

// NewViewState returns an empty state that is loading until the first
// snapshot or error arrives.
func NewViewState[T any]() *ViewState[T] {
	return &ViewState[T]{
		items:   []T{},
		loading: true,
		changed: make(chan struct{}, 1),
	}
}

// Replace swaps in a new snapshot and clears any earlier error.
func (v *ViewState[T]) Replace(items []T) {
	if items == nil {
		items = []T{}
	}
	v.mu.Lock()
	v.items = items
	v.version++
	v.loading = false
	v.err = nil
	v.mu.Unlock()
	v.notify()
}

// Fail stops the loading indicator and keeps the previous items.
func (v *ViewState[T]) Fail(err error) {
	v.mu.Lock()
	v.loading = false
	v.err = err
	v.fails++
	v.mu.Unlock()
	v.notify()
}

// Items returns a copy of the current snapshot.
func (v *ViewState[T]) Items() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Version counts the snapshots applied so far.
func (v *ViewState[T]) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Loading is true until the first snapshot or error.
func (v *ViewState[T]) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// Err returns the last error, cleared by the next snapshot.
func (v *ViewState[T]) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// Failures counts the errors received so far.
func (v *ViewState[T]) Failures() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.fails
}

// Changed receives a value after updates. Consecutive updates may be
// coalesced into one signal.
func (v *ViewState[T]) Changed() <-chan struct{} {
	return v.changed
}

func (v *ViewState[T]) notify() {
	select {
	case v.changed <- struct{}{}:
	default:
	}
}
