// Package catalog holds the fixed set of sellable products and their
// pricing rules. A Catalog is built once at startup and never mutated.
package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

type Catalog struct {
	products []domain.Product
	byCode   map[string]int
}

func New(products ...domain.Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one product")
	}

	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byCode:   make(map[string]int, len(products)),
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byCode[p.Code]; dup {
			return nil, fmt.Errorf("duplicate product code %s", p.Code)
		}
		c.byCode[p.Code] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func (c *Catalog) ByCode(code string) (domain.Product, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Products returns the products in catalog order. The slice is a copy.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

type fileProduct struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Unit        string `yaml:"unit"`
	UnitLabel   string `yaml:"unit_label"`
	UnitPrice   string `yaml:"unit_price"`
	MinQuantity string `yaml:"min_quantity"`
	Step        string `yaml:"step"`
}

type fileCatalog struct {
	Products []fileProduct `yaml:"products"`
}

// LoadFile reads a YAML catalog of the form
//
//	products:
//	  - code: YD_ET
//	    name: Genç Dana Eti
//	    unit: weight
//	    unit_label: kg
//	    unit_price: "13.00"
//	    min_quantity: "5"
//	    step: "0.5"
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(fc.Products))
	for i, fp := range fc.Products {
		p, err := fp.toProduct()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		products = append(products, p)
	}
	return New(products...)
}

func (fp fileProduct) toProduct() (domain.Product, error) {
	kind, err := domain.ParseUnitKind(fp.Unit)
	if err != nil {
		return domain.Product{}, err
	}
	price, err := domain.ParseMoney(fp.UnitPrice)
	if err != nil {
		return domain.Product{}, fmt.Errorf("unit_price: %w", err)
	}
	minQty, err := decimal.NewFromString(fp.MinQuantity)
	if err != nil {
		return domain.Product{}, fmt.Errorf("min_quantity: %w", err)
	}
	step, err := decimal.NewFromString(fp.Step)
	if err != nil {
		return domain.Product{}, fmt.Errorf("step: %w", err)
	}

	label := fp.UnitLabel
	if label == "" {
		label = defaultLabel(kind)
	}

	return domain.Product{
		Code:        fp.Code,
		Name:        fp.Name,
		UnitKind:    kind,
		UnitLabel:   label,
		UnitPrice:   price,
		MinQuantity: minQty,
		Step:        step,
	}, nil
}

func defaultLabel(kind domain.UnitKind) string {
	if kind == domain.UnitPack {
		return "paket"
	}
	return "kg"
}
