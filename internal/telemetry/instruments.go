package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are the application counters. A nil *Instruments records
// nothing, which keeps tests free of meter setup.
type Instruments struct {
	submitted           metric.Int64Counter
	submittedItems      metric.Int64Counter
	rejected            metric.Int64Counter
	fulfillmentFailures metric.Int64Counter
}

func NewInstruments(meterName string) (*Instruments, error) {
	meter := otel.Meter(meterName)

	submitted, err := meter.Int64Counter("orders.submitted",
		metric.WithDescription("Orders committed to the store"),
	)
	if err != nil {
		return nil, err
	}

	submittedItems, err := meter.Int64Counter("orders.submitted.items",
		metric.WithDescription("Line items committed to the store"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("orders.rejected",
		metric.WithDescription("Order submissions rejected, by kind"),
	)
	if err != nil {
		return nil, err
	}

	fulfillmentFailures, err := meter.Int64Counter("orders.fulfillment.failures",
		metric.WithDescription("Document or notification failures after commit, by kind"),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		submitted:           submitted,
		submittedItems:      submittedItems,
		rejected:            rejected,
		fulfillmentFailures: fulfillmentFailures,
	}, nil
}

func (i *Instruments) OrderSubmitted(ctx context.Context, items int) {
	if i == nil {
		return
	}
	i.submitted.Add(ctx, 1)
	i.submittedItems.Add(ctx, int64(items))
}

func (i *Instruments) OrderRejected(ctx context.Context, kind string) {
	if i == nil {
		return
	}
	i.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (i *Instruments) FulfillmentFailed(ctx context.Context, kind string) {
	if i == nil {
		return
	}
	i.fulfillmentFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
