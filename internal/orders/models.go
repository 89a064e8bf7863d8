package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the committed header plus its lines.
type Order struct {
	ID         int64           `json:"orderId"`
	CustomerID int64           `json:"customerId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Status     Status          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Lines      []Line          `json:"lines"`
}

// Line is frozen at placement: later product price changes never touch it.
type Line struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Summary is the list view of an order; it carries a line count only.
type Summary struct {
	ID        int64           `json:"orderId"`
	CreatedAt time.Time       `json:"createdAt"`
	Status    Status          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	LineCount int             `json:"lineCount"`
}

// Header is what the store assigns when an order row is created.
type Header struct {
	ID        int64
	CreatedAt time.Time
}
