package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	UnitKind    UnitKind        `json:"unit_kind"`
	UnitLabel   string          `json:"unit_label"`
	UnitPrice   Money           `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	LineTotal   Money           `json:"line_total"`
}

type Order struct {
	ID           int64      `json:"id"`
	CustomerName string     `json:"customer_name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email,omitempty"`
	Note         string     `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Items        []LineItem `json:"items"`
}

// Total is derived from the line items on every call; it is never stored.
func (o Order) Total() Money {
	var total Money
	for _, item := range o.Items {
		total += item.LineTotal
	}
	return total
}
