package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

// OrderReader loads the committed order and its line items, returning nil
// when no such order exists.
type OrderReader interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, order domain.Order) (domain.DeliveryStatus, error)
}

// FulfillmentHandler runs fulfillment for order.created events against the
// stored order, not the event snapshot. Failures are logged and the message
// is acknowledged; there are no retries.
type FulfillmentHandler struct {
	orders     OrderReader
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewFulfillmentHandler(orders OrderReader, dispatcher Dispatcher, logger *slog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		orders:     orders,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *FulfillmentHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("dropping malformed order created event", "error", err)
		return nil
	}

	if event.Order.ID == 0 {
		h.logger.Error("dropping order created event without order", "event_id", event.EventID)
		return nil
	}

	h.logger.Info("processing order created event", "event_id", event.EventID, "order_id", event.Order.ID)

	order, err := h.orders.GetOrder(ctx, event.Order.ID)
	if err != nil {
		h.logger.Error("failed to load order", "error", err, "order_id", event.Order.ID)
		return nil
	}
	if order == nil || len(order.Items) == 0 {
		h.logger.Error("dropping order created event for unknown order", "event_id", event.EventID, "order_id", event.Order.ID)
		return nil
	}

	status, err := h.dispatcher.Dispatch(ctx, *order)
	if err != nil {
		h.logger.Error("order fulfillment degraded", "error", err, "order_id", order.ID, "delivery", status)
		return nil
	}

	h.logger.Info("order processing complete", "order_id", order.ID, "delivery", status)
	return nil
}
