package orders

import (
	"math"

	"github.com/shopspring/decimal"
)

// Cart is the canonical placement input. Boundary code maps every accepted
// payload shape into it; nothing in this package looks at raw payloads.
type Cart struct {
	CustomerID int64      `validate:"gt=0"`
	Lines      []CartLine `validate:"required,min=1,dive"`
	// Total is the client-asserted order total, if any.
	Total *decimal.Decimal
}

// MaxQuantity is the largest line quantity the stock columns can hold.
const MaxQuantity = math.MaxInt32

type CartLine struct {
	ProductID int64 `validate:"gt=0"`
	Quantity  int   `validate:"gte=1,lte=2147483647"`

	// Price-bearing fields, in resolution order.
	UnitPrice       *decimal.Decimal
	LegacyUnitPrice *decimal.Decimal
	Product         *ProductSnapshot
	Surcharge       decimal.Decimal
}

// ProductSnapshot is the product as the client saw it when building the cart.
type ProductSnapshot struct {
	BasePrice decimal.Decimal
}
