package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/storefront-orders/internal/inventory"
)

// OrderWriter is the write half of the repository used during placement.
type OrderWriter interface {
	CreateHeader(ctx context.Context, customerID int64, status Status, total decimal.Decimal) (Header, error)
	AppendLine(ctx context.Context, orderID int64, l Line) error
}

// StockLedger decrements stock with a floor check.
type StockLedger interface {
	Decrement(ctx context.Context, productID int64, qty int) error
}

// Tx exposes the writers bound to one open transaction.
type Tx interface {
	Orders() OrderWriter
	Inventory() StockLedger
}

// Transactor runs fn inside a single transaction. A nil return commits;
// anything else rolls back every write fn made.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// PgTransactor opens pgx transactions on a pool.
type PgTransactor struct{ DB beginner }

func NewPgTransactor(db beginner) *PgTransactor { return &PgTransactor{DB: db} }

func (t *PgTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := t.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// No-op after Commit. If ctx is already done pgx drops the connection and
	// the server aborts the transaction.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, pgScope{repo: &Repo{DB: tx}, ledger: &inventory.Ledger{DB: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type pgScope struct {
	repo   *Repo
	ledger *inventory.Ledger
}

func (s pgScope) Orders() OrderWriter    { return s.repo }
func (s pgScope) Inventory() StockLedger { return s.ledger }
