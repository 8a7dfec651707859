// Package realtime turns document change notices into per-subscription
// snapshots. Every delivered snapshot is the full result of the query and
// replaces whatever the subscriber held before.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/infrastructure/telemetry"
)

// SnapshotFunc receives every snapshot of a subscription, one at a time.
type SnapshotFunc func(document.Snapshot)

// ErrorFunc receives errors of a single subscription.
type ErrorFunc func(error)

// Bridge opens subscriptions over a document store and its change feed.
type Bridge struct {
	store   document.Reader
	feed    document.ChangeFeed
	logger  *zap.Logger
	metrics *telemetry.RealtimeMetrics

	nextID atomic.Uint64
	active atomic.Int64
}

// Option configures a Bridge
type Option func(*Bridge)

// WithLogger sets the bridge logger
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics records subscription metrics
func WithMetrics(m *telemetry.RealtimeMetrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// NewBridge creates a bridge reading from store and woken by feed.
func NewBridge(store document.Reader, feed document.ChangeFeed, opts ...Option) *Bridge {
	b := &Bridge{store: store, feed: feed, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named("realtime")
	return b
}

// Active returns the number of open subscriptions.
func (b *Bridge) Active() int64 {
	return b.active.Load()
}

// Subscribe opens a listener on q. The initial snapshot and every snapshot
// after a change to q's collection go to onSnapshot; deliveries are
// serialized. A failing query is reported once on onError and ends the
// subscription without retry; other subscriptions are unaffected.
//
// The subscription ends when Cancel is called or ctx is done.
func (b *Bridge) Subscribe(ctx context.Context, q document.Query, onSnapshot SnapshotFunc, onError ErrorFunc) (*Subscription, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if onSnapshot == nil {
		onSnapshot = func(document.Snapshot) {}
	}
	if onError == nil {
		onError = func(error) {}
	}

	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	s := &Subscription{
		id:         b.nextID.Add(1),
		query:      q,
		bridge:     b,
		onSnapshot: onSnapshot,
		onError:    onError,
		ctx:        runCtx,
		stop:       stop,
		dirty:      make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	// Listen before the first read so no change between the two is missed.
	s.unlisten = b.feed.Listen(func(n document.ChangeNotice) {
		if n.Collection == q.Collection {
			s.markDirty()
		}
	})
	s.markDirty()

	b.active.Add(1)
	b.metrics.SubscriptionOpened(runCtx, q.Collection)
	b.logger.Debug("subscription opened",
		zap.Uint64("subscription_id", s.id),
		zap.Stringer("query", q))

	go s.loop()
	if ctx.Done() != nil {
		stopAfter := context.AfterFunc(ctx, s.Cancel)
		go func() {
			<-s.done
			stopAfter()
		}()
	}
	return s, nil
}

// Subscription is one open listener. Cancel must be called exactly once by
// its owner; further calls are no-ops.
type Subscription struct {
	id         uint64
	query      document.Query
	bridge     *Bridge
	onSnapshot SnapshotFunc
	onError    ErrorFunc

	ctx      context.Context
	stop     context.CancelFunc
	unlisten func()
	dirty    chan struct{}
	done     chan struct{}

	// deliverMu is held while a callback runs; closed is checked under it.
	deliverMu  sync.Mutex
	closed     atomic.Bool
	inCallback atomic.Bool
	cancelOnce sync.Once
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() uint64 { return s.id }

// Query returns the subscribed query.
func (s *Subscription) Query() document.Query { return s.query }

// Done is closed once the subscription has ended.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Closed reports whether the subscription has ended.
func (s *Subscription) Closed() bool { return s.closed.Load() }

// Cancel closes the listener. No snapshot or error is delivered once it
// returns, except that a callback already running on another goroutine
// finishes. It is safe to call from inside a callback. In-flight writes
// are not affected.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		s.closed.Store(true)
		s.unlisten()
		s.stop()
		if !s.inCallback.Load() {
			// Wait out a delivery that started before closed was set.
			s.deliverMu.Lock()
			s.deliverMu.Unlock()
		}
		s.bridge.active.Add(-1)
		s.bridge.metrics.SubscriptionClosed(context.Background(), s.query.Collection)
		s.bridge.logger.Debug("subscription closed", zap.Uint64("subscription_id", s.id))
	})
}

func (s *Subscription) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *Subscription) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.dirty:
		}
		if !s.refresh() {
			return
		}
	}
}

// refresh re-runs the query and delivers the result. It returns false once
// the subscription is over.
func (s *Subscription) refresh() bool {
	ctx, span := telemetry.StartSpan(s.ctx, "realtime", "snapshot",
		telemetry.AttrCollection.String(s.query.Collection))
	var snap document.Snapshot
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.SnapshotLabels(s.query.Collection), func(ctx context.Context) {
		snap, err = s.bridge.store.Run(ctx, s.query)
	})
	if err == nil {
		span.SetAttributes(telemetry.AttrDocuments.Int(snap.Size()))
	}
	telemetry.RecordError(span, err)
	span.End()

	if err != nil {
		if s.closed.Load() {
			return false
		}
		s.bridge.logger.Error("subscription query failed",
			zap.Uint64("subscription_id", s.id),
			zap.String("collection", s.query.Collection),
			zap.Error(err))
		s.bridge.metrics.SubscriptionError(s.ctx, s.query.Collection, "query")
		s.deliver(func() { s.onError(err) })
		s.Cancel()
		return false
	}

	delivered := s.deliver(func() { s.onSnapshot(snap) })
	if delivered {
		s.bridge.metrics.SnapshotDelivered(s.ctx, s.query.Collection, snap.Size())
	}
	return !s.closed.Load()
}

func (s *Subscription) deliver(fn func()) bool {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.inCallback.Store(true)
	defer s.inCallback.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.bridge.logger.Error("subscription callback panicked",
				zap.Uint64("subscription_id", s.id),
				zap.String("collection", s.query.Collection),
				zap.Any("panic", r))
			s.bridge.metrics.SubscriptionError(s.ctx, s.query.Collection, "panic")
		}
	}()
	fn()
	return true
}
