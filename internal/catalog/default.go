package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

var (
	half = decimal.RequireFromString("0.5")
	one  = decimal.NewFromInt(1)
	five = decimal.NewFromInt(5)
)

func weight(code, name string, price domain.Money) domain.Product {
	return domain.Product{Code: code, Name: name, UnitKind: domain.UnitWeight, UnitLabel: "kg", UnitPrice: price, MinQuantity: five, Step: half}
}

func pack(code, name string, price domain.Money) domain.Product {
	return domain.Product{Code: code, Name: name, UnitKind: domain.UnitPack, UnitLabel: "paket", UnitPrice: price, MinQuantity: one, Step: one}
}

// Default is the shop's built-in product list, used when no catalog file is
// configured.
func Default() *Catalog {
	c, err := New(
		weight("YD_ET", "Genç Dana Eti", 1300),
		weight("YD_KIYMA", "Genç Dana Kıyma", 1200),
		weight("YD_KEMIK", "Genç Dana Kemikli Et", 1100),
		weight("KUZU_TUM", "Kuzu Eti (Tüm)", 1300),

		pack("T_BUDU", "Tavuk Budu (10 kg paket)", 2700),
		pack("T_KANAT", "Tavuk Kanadı (10 kg paket)", 3500),
		pack("T_GOGUS", "Tavuk Göğsü (5 kg paket)", 3700),
		pack("T_INCIK", "Tavuk İncik (10 kg paket)", 3500),
	)
	if err != nil {
		panic(err)
	}
	return c
}
