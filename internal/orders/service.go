package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/orderdesk/internal/catalog"
	"github.com/joao-fontenele/orderdesk/internal/domain"
	"github.com/joao-fontenele/orderdesk/internal/telemetry"
)

// OrderStore persists an order together with all of its line items in a
// single transaction, setting ID and CreatedAt on success.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
}

// Request is an order as submitted by a customer. Items holds the
// serialized list of {code, quantity} pairs exactly as received.
type Request struct {
	CustomerName string
	Phone        string
	Email        string
	Note         string
	Items        []byte
}

type Service struct {
	catalog     *catalog.Catalog
	store       OrderStore
	instruments *telemetry.Instruments
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(cat *catalog.Catalog, store OrderStore, instruments *telemetry.Instruments, logger *slog.Logger) *Service {
	return &Service{
		catalog:     cat,
		store:       store,
		instruments: instruments,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit validates req against the catalog and persists it. Any rejected
// line rejects the whole order and nothing is written. Identical requests
// create distinct orders.
func (s *Service) Submit(ctx context.Context, req Request) (*domain.Order, error) {
	order, err := s.submit(ctx, req)
	if err != nil {
		s.instruments.OrderRejected(ctx, KindName(err))
		return nil, err
	}
	s.instruments.OrderSubmitted(ctx, len(order.Items))
	return order, nil
}

func (s *Service) submit(ctx context.Context, req Request) (*domain.Order, error) {
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, &OrderError{Kind: ErrMissingContact, Message: "customer name and phone are required"}
	}

	raw, err := ParseItems(req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(raw))
	for _, it := range raw {
		code := strings.TrimSpace(it.Code)
		p, ok := s.catalog.ByCode(code)
		if !ok {
			return nil, &OrderError{Kind: ErrUnknownProduct, Code: code, Message: fmt.Sprintf("%s: product is not in the catalog", code)}
		}

		item, err := Normalize(p, it.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	var total domain.Money
	for _, item := range items {
		if total, err = total.Add(item.LineTotal); err != nil {
			return nil, &OrderError{Kind: ErrInvalidQuantity, Message: "order total is out of range", Err: err}
		}
	}

	order := &domain.Order{
		CustomerName: name,
		Phone:        phone,
		Email:        strings.TrimSpace(req.Email),
		Note:         strings.TrimSpace(req.Note),
		CreatedAt:    s.now().UTC(),
		Items:        items,
	}

	if err := s.store.Create(ctx, order); err != nil {
		s.logger.Error("failed to persist order", "error", err, "customer_name", name)
		return nil, &OrderError{Kind: ErrPersistenceFailure, Err: err}
	}

	s.logger.Info("order created", "order_id", order.ID, "items", len(order.Items), "total", order.Total().Amount())
	return order, nil
}

// ParseItems decodes the serialized item list and drops entries whose
// quantity is zero. Quantities that fail to parse are kept so that
// normalization reports them against their product.
func ParseItems(data []byte) ([]RawLineItem, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &OrderError{Kind: ErrMalformedItems, Message: "at least one product is required"}
	}

	var raw []RawLineItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &OrderError{Kind: ErrMalformedItems, Message: "item list could not be parsed", Err: err}
	}

	items := raw[:0]
	for _, it := range raw {
		q, err := it.Quantity.Decimal()
		if err == nil && q.IsZero() {
			continue
		}
		items = append(items, it)
	}

	if len(items) == 0 {
		return nil, &OrderError{Kind: ErrMalformedItems, Message: "at least one product is required"}
	}
	return items, nil
}

// PreviewResult is the optimistic view shown to the customer before submit.
type PreviewResult struct {
	Items []PreviewLine `json:"items"`
	Total domain.Money  `json:"total"`
}

// Preview applies the lenient form rule to every known item; unknown codes
// are skipped.
func (s *Service) Preview(items []RawLineItem) PreviewResult {
	result := PreviewResult{Items: make([]PreviewLine, 0, len(items))}
	for _, it := range items {
		p, ok := s.catalog.ByCode(strings.TrimSpace(it.Code))
		if !ok {
			continue
		}
		line := Preview(p, it.Quantity)
		total, err := result.Total.Add(line.LineTotal)
		if err != nil {
			line.Quantity, line.LineTotal = decimal.Zero, 0
		} else {
			result.Total = total
		}
		result.Items = append(result.Items, line)
	}
	return result
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}
