package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNew_RecordsResolutions(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.GeocodeResolutionsTotal.Add(ctx, 2, metric.WithAttributes(attribute.String("outcome", OutcomeHit)))
	m.GeocodeResolutionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", OutcomeMiss)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var found bool
	for _, md := range rm.ScopeMetrics[0].Metrics {
		if md.Name != "geocode_resolutions_total" {
			continue
		}
		found = true
		sum, ok := md.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		assert.Equal(t, int64(3), total)
		assert.Len(t, sum.DataPoints, 2)
	}
	assert.True(t, found)
}

func TestGet_ReturnsSingleton(t *testing.T) {
	first := Get()
	require.NotNil(t, first)
	assert.Same(t, first, Get())
}
