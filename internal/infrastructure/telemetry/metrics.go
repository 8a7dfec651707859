package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName names the meter used for dashboard instruments.
const MeterName = "github.com/sparkcode/dashboard"

// RealtimeMetrics instruments the subscription bridge. A nil
// *RealtimeMetrics records nothing.
type RealtimeMetrics struct {
	active    metric.Int64UpDownCounter
	snapshots metric.Int64Counter
	errors    metric.Int64Counter
	size      metric.Int64Histogram
}

// NewRealtimeMetrics creates the realtime instruments on meter.
func NewRealtimeMetrics(meter metric.Meter) (*RealtimeMetrics, error) {
	active, err := meter.Int64UpDownCounter("realtime_subscriptions_active",
		metric.WithDescription("Open document subscriptions"),
		metric.WithUnit("{subscription}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime_subscriptions_active: %w", err)
	}
	snapshots, err := meter.Int64Counter("realtime_snapshots_delivered_total",
		metric.WithDescription("Snapshots delivered to subscribers"),
		metric.WithUnit("{snapshot}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime_snapshots_delivered_total: %w", err)
	}
	errs, err := meter.Int64Counter("realtime_subscription_errors_total",
		metric.WithDescription("Errors reported to subscribers"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime_subscription_errors_total: %w", err)
	}
	size, err := meter.Int64Histogram("realtime_snapshot_documents",
		metric.WithDescription("Documents per delivered snapshot"),
		metric.WithUnit("{document}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 250, 500, 1000))
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime_snapshot_documents: %w", err)
	}
	return &RealtimeMetrics{active: active, snapshots: snapshots, errors: errs, size: size}, nil
}

// SubscriptionOpened counts a new subscription.
func (m *RealtimeMetrics) SubscriptionOpened(ctx context.Context, collection string) {
	if m == nil {
		return
	}
	m.active.Add(ctx, 1, metric.WithAttributes(AttrCollection.String(collection)))
}

// SubscriptionClosed counts a cancelled subscription.
func (m *RealtimeMetrics) SubscriptionClosed(ctx context.Context, collection string) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1, metric.WithAttributes(AttrCollection.String(collection)))
}

// SnapshotDelivered counts a snapshot of n documents.
func (m *RealtimeMetrics) SnapshotDelivered(ctx context.Context, collection string, n int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(AttrCollection.String(collection))
	m.snapshots.Add(ctx, 1, attrs)
	m.size.Record(ctx, int64(n), attrs)
}

// SubscriptionError counts an error delivered to a listener.
func (m *RealtimeMetrics) SubscriptionError(ctx context.Context, collection, kind string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(
		AttrCollection.String(collection),
		attribute.String("kind", kind),
	))
}

// RegisterDBPoolMetrics reports connection pool statistics of db on every
// collection cycle.
func RegisterDBPoolMetrics(meter metric.Meter, db *sql.DB) (metric.Registration, error) {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create db_pool_connections: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create db_pool_connections_max: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create db_pool_wait_total: %w", err)
	}

	state := attribute.Key("db.pool.state")
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := db.Stats()
		o.ObserveInt64(conns, int64(s.InUse), metric.WithAttributes(state.String("in_use")))
		o.ObserveInt64(conns, int64(s.Idle), metric.WithAttributes(state.String("idle")))
		o.ObserveInt64(maxOpen, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, conns, maxOpen, waits)
}
