package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type UnitKind string

const (
	UnitWeight UnitKind = "WEIGHT"
	UnitPack   UnitKind = "PACK"
)

func ParseUnitKind(s string) (UnitKind, error) {
	switch UnitKind(strings.ToUpper(strings.TrimSpace(s))) {
	case UnitWeight:
		return UnitWeight, nil
	case UnitPack:
		return UnitPack, nil
	default:
		return "", fmt.Errorf("unknown unit kind %q", s)
	}
}

// Product is a catalog entry. Prices are snapshotted into line items at
// order time, so changing a product never rewrites past orders.
type Product struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	UnitKind    UnitKind        `json:"unit_kind"`
	UnitLabel   string          `json:"unit_label"`
	UnitPrice   Money           `json:"unit_price"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Step        decimal.Decimal `json:"step"`
}

// QuantityPlaces is the number of decimals a stored quantity keeps.
const QuantityPlaces = 3

func (p Product) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("product code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %s: name is required", p.Code)
	}
	if p.UnitKind != UnitWeight && p.UnitKind != UnitPack {
		return fmt.Errorf("product %s: unknown unit kind %q", p.Code, p.UnitKind)
	}
	if p.UnitPrice < 0 {
		return fmt.Errorf("product %s: unit price must not be negative", p.Code)
	}
	if !p.MinQuantity.IsPositive() {
		return fmt.Errorf("product %s: minimum quantity must be positive", p.Code)
	}
	if !p.Step.IsPositive() {
		return fmt.Errorf("product %s: step must be positive", p.Code)
	}
	if !p.Step.Equal(p.Step.Round(QuantityPlaces)) || !p.MinQuantity.Equal(p.MinQuantity.Round(QuantityPlaces)) {
		return fmt.Errorf("product %s: step and minimum allow at most %d decimals", p.Code, QuantityPlaces)
	}
	if p.UnitKind == UnitPack && (!p.Step.IsInteger() || !p.MinQuantity.IsInteger()) {
		return fmt.Errorf("product %s: pack products need an integer step and minimum", p.Code)
	}
	return nil
}
