package realtime

import (
	"context"
	"sync"

	"github.com/sparkcode/dashboard/internal/domain/document"
)

// Screen groups the subscriptions one view needs and closes all of them
// together.
type Screen struct {
	bridge *Bridge
	ctx    context.Context

	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// NewScreen creates a screen whose subscriptions live until Close or ctx end.
func NewScreen(ctx context.Context, b *Bridge) *Screen {
	return &Screen{bridge: b, ctx: ctx}
}

// Track adds sub to the screen. A sub tracked after Close is cancelled at once.
func (s *Screen) Track(sub *Subscription) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

// Close cancels every tracked subscription. Calling it again does nothing.
func (s *Screen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// Len returns the number of tracked subscriptions.
func (s *Screen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Open binds q to a new ViewState tracked by screen.
func Open[T any](screen *Screen, q document.Query, mapper Mapper[T]) (*ViewState[T], error) {
	state := NewViewState[T]()
	sub, err := Bind(screen.ctx, screen.bridge, q, mapper, state)
	if err != nil {
		return nil, err
	}
	screen.Track(sub)
	return state, nil
}
