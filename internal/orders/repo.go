package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo persists order headers and lines. Bind it to a pgx.Tx for writes and
// to the pool for reads.
type Repo struct{ DB DBTX }

func (r *Repo) CreateHeader(ctx context.Context, customerID int64, status Status, total decimal.Decimal) (Header, error) {
	var h Header
	err := r.DB.QueryRow(ctx, `
		INSERT INTO orders(customer_id, status, total)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, customerID, string(status), total).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return Header{}, fmt.Errorf("insert order header: %w", err)
	}
	return h, nil
}

func (r *Repo) AppendLine(ctx context.Context, orderID int64, l Line) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO order_lines(order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal)
	if err != nil {
		return fmt.Errorf("insert line for product %d: %w", l.ProductID, err)
	}
	return nil
}

// GetByID returns the order with its lines joined to product names.
// Status is returned as stored.
func (r *Repo) GetByID(ctx context.Context, orderID int64) (Order, error) {
	o := Order{ID: orderID}
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT customer_id, created_at, status, total
		FROM orders WHERE id = $1`, orderID).Scan(&o.CustomerID, &o.CreatedAt, &status, &o.Total)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("select order %d: %w", orderID, err)
	}
	o.Status = Status(status)

	rows, err := r.DB.Query(ctx, `
		SELECT l.product_id, p.name, l.quantity, l.unit_price, l.subtotal
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.id`, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("select lines of order %d: %w", orderID, err)
	}
	defer rows.Close()

	o.Lines = []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return Order{}, err
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// ListByCustomer returns summaries newest first without loading line detail.
func (r *Repo) ListByCustomer(ctx context.Context, customerID int64) ([]Summary, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.created_at, o.status, o.total, COUNT(l.id)
		FROM orders o
		LEFT JOIN order_lines l ON l.order_id = o.id
		WHERE o.customer_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.id DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders of customer %d: %w", customerID, err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		var status string
		if err := rows.Scan(&s.ID, &s.CreatedAt, &status, &s.Total, &s.LineCount); err != nil {
			return nil, err
		}
		s.Status = Status(status)
		out = append(out, s)
	}
	return out, rows.Err()
}
