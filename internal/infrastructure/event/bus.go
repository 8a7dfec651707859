// Package event distributes document change notices inside one process.
package event

import (
	"context"
	"sync"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"go.uber.org/zap"
)

// InMemoryChangeFeed implements document.ChangeFeed with synchronous in-process
// delivery. Listeners must not block; the realtime bridge only signals its
// own goroutine.
type InMemoryChangeFeed struct {
	registry *listenerRegistry
	logger   *zap.Logger
}

var _ document.ChangeFeed = (*InMemoryChangeFeed)(nil)

// NewInMemoryChangeFeed creates a new in-memory change feed
func NewInMemoryChangeFeed(logger *zap.Logger) *InMemoryChangeFeed {
	return &InMemoryChangeFeed{
		registry: newListenerRegistry(),
		logger:   logger,
	}
}

// Publish delivers the notice to every current listener. A panicking
// listener is logged and does not stop delivery to the others.
func (f *InMemoryChangeFeed) Publish(ctx context.Context, notice document.ChangeNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, fn := range f.registry.snapshot() {
		f.dispatch(fn, notice)
	}
	return nil
}

// Listen registers fn. The returned cancel removes it and may be called any
// number of times.
func (f *InMemoryChangeFeed) Listen(fn func(document.ChangeNotice)) func() {
	id := f.registry.add(fn)
	f.logger.Debug("change listener added", zap.Uint64("listener_id", id))
	var once sync.Once
	return func() {
		once.Do(func() {
			f.registry.remove(id)
			f.logger.Debug("change listener removed", zap.Uint64("listener_id", id))
		})
	}
}

// Listeners returns the number of registered listeners
func (f *InMemoryChangeFeed) Listeners() int {
	return f.registry.len()
}

func (f *InMemoryChangeFeed) dispatch(fn func(document.ChangeNotice), notice document.ChangeNotice) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("change listener panicked",
				zap.String("collection", notice.Collection),
				zap.Any("panic", r),
			)
		}
	}()
	fn(notice)
}
