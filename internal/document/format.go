package document

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

// FormatQuantity renders a quantity with at most three decimals and a decimal
// comma: 5, 4,5, 2,125.
func FormatQuantity(q decimal.Decimal) string {
	return strings.Replace(q.Round(domain.QuantityPlaces).String(), ".", ",", 1)
}

// FormatUnitPrice renders "13,00 € / kg".
func FormatUnitPrice(price domain.Money, unitLabel string) string {
	return price.String() + " / " + strings.ToLower(unitLabel)
}

func Filename(orderID int64) string {
	return "siparis-" + strconv.FormatInt(orderID, 10) + ".pdf"
}

// safeText collapses whitespace runs, including newlines, to single spaces.
func safeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
