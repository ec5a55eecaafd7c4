package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/orderdesk/internal/domain"
	"github.com/joao-fontenele/orderdesk/internal/notify"
)

type fakeRenderer struct {
	doc []byte
	err error
}

func (f *fakeRenderer) Render(domain.Order) ([]byte, error) {
	return f.doc, f.err
}

type fakeNotifier struct {
	sent   []notify.Message
	failTo map[string]error
}

func (f *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	if err := f.failTo[msg.To]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakePublisher struct {
	key   string
	event any
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, key string, event any) error {
	f.key = key
	f.event = event
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOrder(email string) domain.Order {
	return domain.Order{
		ID:           17,
		CustomerName: "Ayşe Yılmaz",
		Phone:        "0176 1234567",
		Email:        email,
		CreatedAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Items: []domain.LineItem{{
			ProductCode: "T_BUDU",
			ProductName: "Tavuk Budu (10 kg paket)",
			UnitKind:    domain.UnitPack,
			UnitLabel:   "paket",
			UnitPrice:   2700,
			Quantity:    decimal.NewFromInt(2),
			LineTotal:   5400,
		}},
	}
}

func TestInline_Dispatch(t *testing.T) {
	t.Run("sends document to admin and customer", func(t *testing.T) {
		notifier := &fakeNotifier{}
		d := NewInline(&fakeRenderer{doc: []byte("%PDF")}, notifier, "admin@example.com", nil, discardLogger())

		status, err := d.Dispatch(context.Background(), testOrder("ayse@example.com"))

		require.NoError(t, err)
		assert.Equal(t, domain.DeliverySent, status)
		require.Len(t, notifier.sent, 2)
		assert.Equal(t, "admin@example.com", notifier.sent[0].To)
		assert.Equal(t, "ayse@example.com", notifier.sent[1].To)
		for _, msg := range notifier.sent {
			assert.Equal(t, "Yeni Sipariş #17 - Ayşe Yılmaz", msg.Subject)
			assert.Contains(t, msg.Body, "Telefon: 0176 1234567")
			require.NotNil(t, msg.Attachment)
			assert.Equal(t, "siparis-17.pdf", msg.Attachment.Filename)
			assert.Equal(t, "application/pdf", msg.Attachment.ContentType)
			assert.Equal(t, []byte("%PDF"), msg.Attachment.Data)
		}
	})

	t.Run("admin only without customer email", func(t *testing.T) {
		notifier := &fakeNotifier{}
		d := NewInline(&fakeRenderer{doc: []byte("%PDF")}, notifier, "admin@example.com", nil, discardLogger())

		status, err := d.Dispatch(context.Background(), testOrder(""))

		require.NoError(t, err)
		assert.Equal(t, domain.DeliverySent, status)
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "admin@example.com", notifier.sent[0].To)
	})

	t.Run("render failure still notifies without attachment", func(t *testing.T) {
		notifier := &fakeNotifier{}
		d := NewInline(&fakeRenderer{err: errors.New("font missing")}, notifier, "admin@example.com", nil, discardLogger())

		status, err := d.Dispatch(context.Background(), testOrder("ayse@example.com"))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRenderFailure)
		assert.NotErrorIs(t, err, ErrNotifyFailure)
		assert.Equal(t, domain.DeliveryDegraded, status)
		require.Len(t, notifier.sent, 2)
		assert.Nil(t, notifier.sent[0].Attachment)
	})

	t.Run("admin failure does not block customer email", func(t *testing.T) {
		notifier := &fakeNotifier{failTo: map[string]error{"admin@example.com": errors.New("smtp down")}}
		d := NewInline(&fakeRenderer{doc: []byte("%PDF")}, notifier, "admin@example.com", nil, discardLogger())

		status, err := d.Dispatch(context.Background(), testOrder("ayse@example.com"))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotifyFailure)
		assert.Contains(t, err.Error(), "smtp down")
		assert.Equal(t, domain.DeliveryDegraded, status)
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "ayse@example.com", notifier.sent[0].To)
	})
}

func TestQueue_Dispatch(t *testing.T) {
	t.Run("publishes order created event", func(t *testing.T) {
		publisher := &fakePublisher{}
		q := NewQueue(publisher, nil, discardLogger())
		q.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

		status, err := q.Dispatch(context.Background(), testOrder(""))

		require.NoError(t, err)
		assert.Equal(t, domain.DeliveryQueued, status)
		assert.Equal(t, "17", publisher.key)

		event, ok := publisher.event.(domain.OrderCreatedEvent)
		require.True(t, ok)
		assert.NotEmpty(t, event.EventID)
		assert.Equal(t, int64(17), event.Order.ID)
		assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), event.Timestamp)

		data, err := json.Marshal(event)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"event_id"`)
	})

	t.Run("publish failure is degraded", func(t *testing.T) {
		q := NewQueue(&fakePublisher{err: errors.New("broker down")}, nil, discardLogger())

		status, err := q.Dispatch(context.Background(), testOrder(""))

		assert.ErrorIs(t, err, ErrNotifyFailure)
		assert.Equal(t, domain.DeliveryDegraded, status)
	})
}
