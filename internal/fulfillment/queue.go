package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/orderdesk/internal/domain"
	"github.com/joao-fontenele/orderdesk/internal/telemetry"
)

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Queue hands committed orders to the worker through the event stream.
type Queue struct {
	publisher   Publisher
	instruments *telemetry.Instruments
	logger      *slog.Logger
	now         func() time.Time
}

func NewQueue(publisher Publisher, instruments *telemetry.Instruments, logger *slog.Logger) *Queue {
	return &Queue{
		publisher:   publisher,
		instruments: instruments,
		logger:      logger,
		now:         time.Now,
	}
}

func (q *Queue) Dispatch(ctx context.Context, order domain.Order) (domain.DeliveryStatus, error) {
	event := domain.OrderCreatedEvent{
		EventID:   uuid.NewString(),
		Order:     order,
		Timestamp: q.now().UTC(),
	}

	if err := q.publisher.Publish(ctx, strconv.FormatInt(order.ID, 10), event); err != nil {
		q.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		q.instruments.FulfillmentFailed(ctx, "publish")
		return domain.DeliveryDegraded, fmt.Errorf("%w: publish order %d: %w", ErrNotifyFailure, order.ID, err)
	}

	q.logger.Info("order queued for fulfillment", "order_id", order.ID, "event_id", event.EventID)
	return domain.DeliveryQueued, nil
}
