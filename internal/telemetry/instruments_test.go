package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]metricdata.Sum[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				sums[m.Name] = sum
			}
		}
	}
	return sums
}

func TestInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)

	inst, err := NewInstruments("orderdesk/test")
	require.NoError(t, err)

	ctx := context.Background()
	inst.OrderSubmitted(ctx, 3)
	inst.OrderSubmitted(ctx, 1)
	inst.OrderRejected(ctx, "below_minimum")
	inst.FulfillmentFailed(ctx, "notify")

	sums := collect(t, reader)

	require.Contains(t, sums, "orders.submitted")
	assert.Equal(t, int64(2), sums["orders.submitted"].DataPoints[0].Value)
	assert.Equal(t, int64(4), sums["orders.submitted.items"].DataPoints[0].Value)

	rejected := sums["orders.rejected"].DataPoints
	require.Len(t, rejected, 1)
	rejectKind, ok := rejected[0].Attributes.Value(attribute.Key("kind"))
	require.True(t, ok)
	assert.Equal(t, "below_minimum", rejectKind.AsString())

	failures := sums["orders.fulfillment.failures"].DataPoints
	require.Len(t, failures, 1)
	kind, _ := failures[0].Attributes.Value("kind")
	assert.Equal(t, "notify", kind.AsString())
}

func TestInstruments_Nil(t *testing.T) {
	var inst *Instruments
	assert.NotPanics(t, func() {
		inst.OrderSubmitted(context.Background(), 1)
		inst.OrderRejected(context.Background(), "x")
		inst.FulfillmentFailed(context.Background(), "render")
	})
}
