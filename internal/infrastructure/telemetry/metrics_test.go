package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRealtimeMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewRealtimeMetrics(provider.Meter(MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	m.SubscriptionOpened(ctx, "projects")
	m.SubscriptionOpened(ctx, "projects")
	m.SubscriptionClosed(ctx, "projects")
	m.SnapshotDelivered(ctx, "projects", 3)
	m.SnapshotDelivered(ctx, "projects", 0)
	m.SubscriptionError(ctx, "students", "mapping")

	got := collect(t, reader)

	active := got["realtime_subscriptions_active"].Data.(metricdata.Sum[int64])
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(1), active.DataPoints[0].Value)
	v, ok := active.DataPoints[0].Attributes.Value(AttrCollection)
	require.True(t, ok)
	assert.Equal(t, "projects", v.AsString())

	snapshots := got["realtime_snapshots_delivered_total"].Data.(metricdata.Sum[int64])
	assert.Equal(t, int64(2), snapshots.DataPoints[0].Value)

	size := got["realtime_snapshot_documents"].Data.(metricdata.Histogram[int64])
	assert.Equal(t, uint64(2), size.DataPoints[0].Count)
	assert.Equal(t, int64(3), size.DataPoints[0].Sum)

	errs := got["realtime_subscription_errors_total"].Data.(metricdata.Sum[int64])
	kind, _ := errs.DataPoints[0].Attributes.Value(attribute.Key("kind"))
	assert.Equal(t, "mapping", kind.AsString())
}

func TestRealtimeMetrics_NilIsNoop(t *testing.T) {
	var m *RealtimeMetrics
	assert.NotPanics(t, func() {
		m.SubscriptionOpened(context.Background(), "x")
		m.SubscriptionClosed(context.Background(), "x")
		m.SnapshotDelivered(context.Background(), "x", 1)
		m.SubscriptionError(context.Background(), "x", "query")
	})
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(3)
	t.Cleanup(func() { _ = sqlDB.Close() })

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	reg, err := RegisterDBPoolMetrics(provider.Meter(MeterName), sqlDB)
	require.NoError(t, err)
	defer reg.Unregister()

	got := collect(t, reader)
	maxOpen := got["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.Len(t, maxOpen.DataPoints, 1)
	assert.Equal(t, int64(3), maxOpen.DataPoints[0].Value)

	conns := got["db_pool_connections"].Data.(metricdata.Gauge[int64])
	assert.Len(t, conns.DataPoints, 2)
}
