package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/storefront-orders/internal/inventory"
	"github.com/shopspring/decimal"
)

var errDiskFull = errors.New("disk full")

// memStore is an in-memory Transactor and OrderReader. Transactions run one
// at a time against a copy of the state that is applied only on success.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	stock  map[int64]int
	names  map[int64]string
	orders map[int64]Order

	// failAppendAt makes the n-th AppendLine of a transaction fail (1-based).
	failAppendAt int
	failHeader   error
	begins       int
}

func newMemStore(stock map[int64]int) *memStore {
	names := map[int64]string{}
	for id := range stock {
		names[id] = fmt.Sprintf("product-%d", id)
	}
	return &memStore{
		clock:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		stock:  stock,
		names:  names,
		orders: map[int64]Order{},
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begins++

	tx := &memTx{store: m, nextID: m.nextID, clock: m.clock, stock: map[int64]int{}, orders: map[int64]Order{}}
	for k, v := range m.stock {
		tx.stock[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.nextID, m.clock, m.stock = tx.nextID, tx.clock, tx.stock
	for id, o := range tx.orders {
		m.orders[id] = o
	}
	return nil
}

func (m *memStore) GetByID(_ context.Context, orderID int64) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	o.Lines = append([]Line(nil), o.Lines...)
	return o, nil
}

func (m *memStore) ListByCustomer(_ context.Context, customerID int64) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Summary{}
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, Summary{ID: o.ID, CreatedAt: o.CreatedAt, Status: o.Status, Total: o.Total, LineCount: len(o.Lines)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) stockOf(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[id]
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// setStoredStatus stands in for fulfillment logic changing a committed order.
func (m *memStore) setStoredStatus(orderID int64, s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.orders[orderID]
	o.Status = s
	m.orders[orderID] = o
}

type memTx struct {
	store   *memStore
	nextID  int64
	clock   time.Time
	stock   map[int64]int
	orders  map[int64]Order
	appends int
}

func (t *memTx) Orders() OrderWriter    { return t }
func (t *memTx) Inventory() StockLedger { return t }

func (t *memTx) CreateHeader(_ context.Context, customerID int64, status Status, total decimal.Decimal) (Header, error) {
	if t.store.failHeader != nil {
		return Header{}, t.store.failHeader
	}
	t.nextID++
	t.clock = t.clock.Add(time.Second)
	h := Header{ID: t.nextID, CreatedAt: t.clock}
	t.orders[h.ID] = Order{ID: h.ID, CustomerID: customerID, CreatedAt: h.CreatedAt, Status: status, Total: total, Lines: []Line{}}
	return h, nil
}

func (t *memTx) AppendLine(_ context.Context, orderID int64, l Line) error {
	t.appends++
	if t.store.failAppendAt == t.appends {
		return errDiskFull
	}
	o, ok := t.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d not in transaction", orderID)
	}
	l.ProductName = t.store.names[l.ProductID]
	o.Lines = append(o.Lines, l)
	t.orders[orderID] = o
	return nil
}

func (t *memTx) Decrement(_ context.Context, productID int64, qty int) error {
	if qty <= 0 {
		return inventory.ErrInvalidQuantity
	}
	s, ok := t.stock[productID]
	if !ok {
		return fmt.Errorf("%w: %d", inventory.ErrProductNotFound, productID)
	}
	if s < qty {
		return fmt.Errorf("%w: product %d requested %d available %d", inventory.ErrInsufficientStock, productID, qty, s)
	}
	t.stock[productID] = s - qty
	return nil
}
