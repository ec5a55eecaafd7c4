package admin

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

var exportHeader = []string{
	"order_id",
	"customer_name",
	"product_name",
	"quantity",
	"unit_label",
	"unit_price_eur",
	"line_total_eur",
	"created_at",
}

// WriteCSV writes one row per line item in the layout spreadsheet tools
// expect for German and Turkish locales: UTF-8 BOM, semicolon delimiter
// and decimal commas. Orders are written in the given order.
func WriteCSV(w io.Writer, list []domain.Order) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, o := range list {
		for _, item := range o.Items {
			row := []string{
				strconv.FormatInt(o.ID, 10),
				o.CustomerName,
				item.ProductName,
				strings.Replace(item.Quantity.String(), ".", ",", 1),
				item.UnitLabel,
				item.UnitPrice.Amount(),
				item.LineTotal.Amount(),
				o.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
