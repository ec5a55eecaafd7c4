package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// ProductQuantity is the ordered quantity of one product across all orders.
type ProductQuantity struct {
	ProductName   string          `json:"product_name"`
	UnitLabel     string          `json:"unit_label"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if len(order.Items) == 0 {
		return errors.New("order has no line items")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, createdAt, err := insertOrder(ctx, tx, order)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := insertLineItems(ctx, tx, id, order.Items); err != nil {
		return fmt.Errorf("insert line items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	order.ID = id
	order.CreatedAt = createdAt.UTC()
	return nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) (int64, time.Time, error) {
	var id int64
	var createdAt time.Time
	err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, phone, email, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, order.CustomerName, order.Phone, nullString(order.Email), nullString(order.Note), order.CreatedAt).Scan(&id, &createdAt)
	return id, createdAt, err
}

func insertLineItems(ctx context.Context, tx *sql.Tx, orderID int64, items []domain.LineItem) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, position, product_code, product_name, unit_kind, unit_label, unit_price_cents, quantity, line_total_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, item := range items {
		_, err := stmt.ExecContext(ctx, orderID, i, item.ProductCode, item.ProductName, string(item.UnitKind),
			item.UnitLabel, int64(item.UnitPrice), item.Quantity, int64(item.LineTotal))
		if err != nil {
			return err
		}
	}
	return nil
}

// GetOrder returns the order with its items, or nil when it does not exist.
func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT id, customer_name, phone, email, note, created_at
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	order.Items, err = r.GetLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) GetLineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_code, product_name, unit_kind, unit_label, unit_price_cents, quantity, line_total_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.LineItem{}
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListOrdersWithItems returns every order, newest first, with items in
// submission order.
func (r *OrderRepository) ListOrdersWithItems(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_name, phone, email, note, created_at
		FROM orders
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[int64]*domain.Order)
	var orderIDs []int64

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		order.Items = []domain.LineItem{}
		orderMap[order.ID] = order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_code, product_name, unit_kind, unit_label, unit_price_cents, quantity, line_total_cents
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID int64
		item, err := scanLineItem(itemRows, &orderID)
		if err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}
	return orders, nil
}

func (r *OrderRepository) SumQuantityByProduct(ctx context.Context) ([]ProductQuantity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_name, unit_label, SUM(quantity)
		FROM order_items
		GROUP BY product_name, unit_label
		ORDER BY product_name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stats := []ProductQuantity{}
	for rows.Next() {
		var stat ProductQuantity
		if err := rows.Scan(&stat.ProductName, &stat.UnitLabel, &stat.TotalQuantity); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteAllOrders removes every order and line item in one transaction.
func (r *OrderRepository) DeleteAllOrders(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var order domain.Order
	var email, note sql.NullString
	if err := s.Scan(&order.ID, &order.CustomerName, &order.Phone, &email, &note, &order.CreatedAt); err != nil {
		return nil, err
	}
	order.Email = email.String
	order.Note = note.String
	order.CreatedAt = order.CreatedAt.UTC()
	return &order, nil
}

// scanLineItem scans the item columns, preceded by any extra destinations.
func scanLineItem(s scanner, prefix ...any) (domain.LineItem, error) {
	var item domain.LineItem
	var kind string
	var unitPrice, lineTotal int64
	dest := append(prefix, &item.ProductCode, &item.ProductName, &kind, &item.UnitLabel, &unitPrice, &item.Quantity, &lineTotal)
	if err := s.Scan(dest...); err != nil {
		return domain.LineItem{}, err
	}
	item.UnitKind = domain.UnitKind(kind)
	item.UnitPrice = domain.Money(unitPrice)
	item.LineTotal = domain.Money(lineTotal)
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
