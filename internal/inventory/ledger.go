package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrProductNotFound   = errors.New("product not found")
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger is the only writer of products.stock.
// Bind it to the transaction that writes the owning order.
type Ledger struct{ DB DBTX }

// Decrement subtracts qty from the product's stock in one conditional UPDATE.
// Concurrent decrements of the same row serialize on the row lock, and the
// WHERE clause re-checks the floor after the lock is acquired, so stock never
// goes negative and no update is lost.
func (l *Ledger) Decrement(ctx context.Context, productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	ct, err := l.DB.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock for product %d: %w", productID, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: tell a missing product apart from a short one.
	available, err := l.Stock(ctx, productID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: product %d requested %d available %d", ErrInsufficientStock, productID, qty, available)
}

func (l *Ledger) Stock(ctx context.Context, productID int64) (int, error) {
	var stock int
	err := l.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", ErrProductNotFound, productID)
	}
	if err != nil {
		return 0, fmt.Errorf("read stock for product %d: %w", productID, err)
	}
	return stock, nil
}
