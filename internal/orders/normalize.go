package orders

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

// MaxQuantity is the largest quantity order_items.quantity NUMERIC(12,3)
// can hold.
var MaxQuantity = decimal.RequireFromString("999999999.999")

// RawQuantity is a quantity as submitted by the client: a JSON number, a
// numeric string, an empty string or null.
type RawQuantity string

func (q *RawQuantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*q = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*q = RawQuantity(str)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("quantity must be a number or string: %w", err)
		}
		*q = RawQuantity(n)
	}
	return nil
}

// Decimal parses the quantity. An empty quantity is zero, like an untouched
// form field.
func (q RawQuantity) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(string(q))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

type RawLineItem struct {
	Code     string      `json:"code"`
	Quantity RawQuantity `json:"quantity"`
}

func roundToStep(q, step decimal.Decimal) decimal.Decimal {
	return q.Div(step).Round(0).Mul(step).Round(domain.QuantityPlaces)
}

// Normalize validates raw against p and returns the priced line item. It is
// the authoritative quantity rule; rejections are *OrderError values.
func Normalize(p domain.Product, raw RawQuantity) (domain.LineItem, error) {
	q, err := raw.Decimal()
	if err != nil {
		return domain.LineItem{}, productError(ErrInvalidQuantity, p, "%s: quantity %q is not a number", p.Name, string(raw))
	}

	q = roundToStep(q, p.Step)

	if q.LessThan(p.MinQuantity) {
		return domain.LineItem{}, productError(ErrBelowMinimum, p, "%s: minimum order is %s %s", p.Name, p.MinQuantity.String(), p.UnitLabel)
	}
	if q.GreaterThan(MaxQuantity) {
		return domain.LineItem{}, productError(ErrInvalidQuantity, p, "%s: quantity %s exceeds the maximum of %s", p.Name, q.String(), MaxQuantity.String())
	}
	if p.UnitKind == domain.UnitPack && !q.IsInteger() {
		return domain.LineItem{}, productError(ErrNonIntegerPack, p, "%s: pack count must be a whole number", p.Name)
	}

	lineTotal, err := p.UnitPrice.Mul(q)
	if err != nil {
		return domain.LineItem{}, productError(ErrInvalidQuantity, p, "%s: line total for quantity %s is out of range", p.Name, q.String())
	}

	return domain.LineItem{
		ProductCode: p.Code,
		ProductName: p.Name,
		UnitKind:    p.UnitKind,
		UnitLabel:   p.UnitLabel,
		UnitPrice:   p.UnitPrice,
		Quantity:    q,
		LineTotal:   lineTotal,
	}, nil
}

type PreviewLine struct {
	Code      string          `json:"code"`
	Quantity  decimal.Decimal `json:"quantity"`
	LineTotal domain.Money    `json:"line_total"`
}

// Preview is the lenient rule the order form applies while the customer
// types: anything unparsable, negative or out of range shows as zero and
// the minimum is not enforced. It never decides whether an order is
// accepted.
func Preview(p domain.Product, raw RawQuantity) PreviewLine {
	q, err := raw.Decimal()
	if err != nil || q.IsNegative() {
		q = decimal.Zero
	}

	q = roundToStep(q, p.Step)
	if p.UnitKind == domain.UnitPack {
		q = q.Round(0)
	}

	lineTotal, err := p.UnitPrice.Mul(q)
	if err != nil || q.GreaterThan(MaxQuantity) {
		q, lineTotal = decimal.Zero, 0
	}

	return PreviewLine{
		Code:      p.Code,
		Quantity:  q,
		LineTotal: lineTotal,
	}
}
