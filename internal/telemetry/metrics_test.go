package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewSyncMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		m, err := NewSyncMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("creates instruments with SDK provider", func(t *testing.T) {
		t.Parallel()

		mp := sdkmetric.NewMeterProvider()
		defer func() { _ = mp.Shutdown(context.Background()) }()

		m, err := NewSyncMetrics(mp)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.NotNil(t, m.passDuration)
		assert.NotNil(t, m.enrolments)
	})
}

func TestRecordPass(t *testing.T) {
	t.Parallel()

	t.Run("no-op when metrics is nil", func(t *testing.T) {
		t.Parallel()

		var m *SyncMetrics
		m.RecordPass(context.Background(), "web", time.Second, true, PassCounts{CoursesCreated: 1})
	})

	t.Run("records counters and duration", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		m, err := NewSyncMetrics(mp)
		require.NoError(t, err)

		m.RecordPass(context.Background(), "file", 1500*time.Millisecond, true, PassCounts{
			CoursesCreated: 2,
			CoursesUpdated: 1,
			Enrolments:     5,
			NotFound:       1,
		})

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		sums := map[string]int64{}
		var sawHistogram bool
		for _, scope := range rm.ScopeMetrics {
			if scope.Scope.Name != SyncMetricsMeterName {
				continue
			}
			for _, md := range scope.Metrics {
				switch data := md.Data.(type) {
				case metricdata.Sum[int64]:
					for _, dp := range data.DataPoints {
						sums[md.Name] += dp.Value
					}
				case metricdata.Histogram[float64]:
					sawHistogram = true
					require.Len(t, data.DataPoints, 1)
					assert.Equal(t, uint64(1), data.DataPoints[0].Count)
					assert.InDelta(t, 1.5, data.DataPoints[0].Sum, 0.001)
				}
			}
		}

		assert.True(t, sawHistogram)
		assert.Equal(t, int64(2), sums["enrolsync_courses_created_total"])
		assert.Equal(t, int64(1), sums["enrolsync_courses_updated_total"])
		assert.Equal(t, int64(5), sums["enrolsync_enrolments_total"])
		assert.Equal(t, int64(1), sums["enrolsync_users_not_found_total"])
	})
}

func TestNewMeterProviderWithoutEndpoint(t *testing.T) {
	t.Parallel()

	mp, shutdown, err := NewMeterProvider(context.Background(), MeterConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.IsType(t, noop.MeterProvider{}, mp)
	assert.NoError(t, shutdown(context.Background()))
}
