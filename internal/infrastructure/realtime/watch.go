package realtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/domain/document"
)

// Mapper converts a stored document into an entity and fails on any
// malformed field.
type Mapper[T any] func(document.Document) (T, error)

// Watch subscribes to q and maps every snapshot with mapper. A snapshot
// holding a malformed document is rejected as a whole on onError; the
// subscription stays open and the next valid snapshot is delivered.
func Watch[T any](ctx context.Context, b *Bridge, q document.Query, mapper Mapper[T], onItems func([]T), onError ErrorFunc) (*Subscription, error) {
	if onError == nil {
		onError = func(error) {}
	}
	return b.Subscribe(ctx, q, func(snap document.Snapshot) {
		items, err := document.MapAll[T](snap, mapper)
		if err != nil {
			b.logger.Error("snapshot rejected by mapper",
				zap.String("collection", q.Collection), zap.Error(err))
			b.metrics.SubscriptionError(ctx, q.Collection, "mapping")
			onError(err)
			return
		}
		onItems(items)
	}, onError)
}

// Bind subscribes q into state: snapshots replace its items and errors are
// recorded on it.
func Bind[T any](ctx context.Context, b *Bridge, q document.Query, mapper Mapper[T], state *ViewState[T]) (*Subscription, error) {
	return Watch(ctx, b, q, mapper, state.Replace, state.Fail)
}
