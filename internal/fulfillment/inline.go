// Package fulfillment runs the side effects of a committed order: the
// order document and the notification emails.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joao-fontenele/orderdesk/internal/document"
	"github.com/joao-fontenele/orderdesk/internal/domain"
	"github.com/joao-fontenele/orderdesk/internal/notify"
	"github.com/joao-fontenele/orderdesk/internal/telemetry"
)

var (
	ErrRenderFailure = errors.New("render failure")
	ErrNotifyFailure = errors.New("notify failure")
)

type Renderer interface {
	Render(order domain.Order) ([]byte, error)
}

// Inline renders the document and sends it to the admin and, when an
// address was given, to the customer. Each recipient is an independent
// attempt.
type Inline struct {
	renderer    Renderer
	notifier    notify.Notifier
	adminEmail  string
	instruments *telemetry.Instruments
	logger      *slog.Logger
}

func NewInline(renderer Renderer, notifier notify.Notifier, adminEmail string, instruments *telemetry.Instruments, logger *slog.Logger) *Inline {
	return &Inline{
		renderer:    renderer,
		notifier:    notifier,
		adminEmail:  adminEmail,
		instruments: instruments,
		logger:      logger,
	}
}

func (d *Inline) Dispatch(ctx context.Context, order domain.Order) (domain.DeliveryStatus, error) {
	var errs []error

	var attachment *notify.Attachment
	doc, err := d.renderer.Render(order)
	if err != nil {
		d.logger.Error("failed to render order document", "error", err, "order_id", order.ID)
		d.instruments.FulfillmentFailed(ctx, "render")
		errs = append(errs, fmt.Errorf("%w: order %d: %w", ErrRenderFailure, order.ID, err))
	} else {
		attachment = &notify.Attachment{
			Filename:    document.Filename(order.ID),
			ContentType: "application/pdf",
			Data:        doc,
		}
	}

	for _, to := range d.recipients(order) {
		msg := OrderMessage(order, to)
		msg.Attachment = attachment
		if err := d.notifier.Send(ctx, msg); err != nil {
			d.logger.Error("failed to send order email", "error", err, "order_id", order.ID, "to", to)
			d.instruments.FulfillmentFailed(ctx, "notify")
			errs = append(errs, fmt.Errorf("%w: order %d to %s: %w", ErrNotifyFailure, order.ID, to, err))
		}
	}

	if len(errs) > 0 {
		return domain.DeliveryDegraded, errors.Join(errs...)
	}

	d.logger.Info("order fulfilled", "order_id", order.ID)
	return domain.DeliverySent, nil
}

func (d *Inline) recipients(order domain.Order) []string {
	var to []string
	if d.adminEmail != "" {
		to = append(to, d.adminEmail)
	}
	if order.Email != "" && order.Email != d.adminEmail {
		to = append(to, order.Email)
	}
	return to
}

// OrderMessage is the notification for a new order, without attachment.
func OrderMessage(order domain.Order, to string) notify.Message {
	return notify.Message{
		To:      to,
		Subject: fmt.Sprintf("Yeni Sipariş #%d - %s", order.ID, order.CustomerName),
		Body: fmt.Sprintf("Yeni sipariş alındı.\n\nSipariş No: %d\nİsim: %s\nTelefon: %s\n\nPDF ektedir.",
			order.ID, order.CustomerName, order.Phone),
	}
}
