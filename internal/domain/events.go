package domain

import "time"

type OrderCreatedEvent struct {
	EventID   string    `json:"event_id"`
	Order     Order     `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliveryStatus reports what happened to the document and notifications
// of a committed order.
type DeliveryStatus string

const (
	DeliverySent     DeliveryStatus = "sent"
	DeliveryQueued   DeliveryStatus = "queued"
	DeliveryDegraded DeliveryStatus = "degraded"
)
