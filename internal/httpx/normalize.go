package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/storefront-orders/internal/orders"
)

// flexID accepts an integer as a JSON number or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*f = flexID(n)
	return nil
}

// placeOrderPayload is every cart shape the storefront has ever sent.
type placeOrderPayload struct {
	CustomerID    *flexID          `json:"customerId"`
	UserID        *flexID          `json:"userId"`
	Items         []linePayload    `json:"items"`
	Total         *decimal.Decimal `json:"total"`
	PaymentMethod string           `json:"paymentMethod"`
}

type linePayload struct {
	ProductRef *flexID `json:"productRef"`
	ProductID  *flexID `json:"productId"`
	IDProducto *flexID `json:"idProducto"`

	Quantity *flexID `json:"quantity"`
	Cantidad *flexID `json:"cantidad"`

	UnitPrice            *decimal.Decimal `json:"unitPrice"`
	PrecioUnitario       *decimal.Decimal `json:"precioUnitario"`
	UnitPriceLegacy      *decimal.Decimal `json:"unit_price"`
	PrecioUnitarioLegacy *decimal.Decimal `json:"precio_unitario"`

	Product       *productPayload       `json:"product"`
	Customization *customizationPayload `json:"customization"`
}

type productPayload struct {
	ID         *flexID          `json:"id"`
	IDProducto *flexID          `json:"idProducto"`
	BasePrice  *decimal.Decimal `json:"basePrice"`
	PrecioBase *decimal.Decimal `json:"precioBase"`
	Price      *decimal.Decimal `json:"price"`
}

type customizationPayload struct {
	Surcharge   *decimal.Decimal `json:"surcharge"`
	PrecioExtra *decimal.Decimal `json:"precioExtra"`
}

// decodeCart reads a placement body and maps it to the canonical cart.
// Structural checks (customer present, lines non-empty, quantities) are left
// to the placement service.
func decodeCart(r io.Reader) (orders.Cart, string, error) {
	var p placeOrderPayload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return orders.Cart{}, "", fmt.Errorf("%w: malformed body: %v", orders.ErrInvalidInput, err)
	}

	cart := orders.Cart{
		CustomerID: int64(firstID(p.CustomerID, p.UserID)),
		Total:      p.Total,
	}
	if p.Items != nil {
		cart.Lines = make([]orders.CartLine, 0, len(p.Items))
	}
	for _, it := range p.Items {
		cart.Lines = append(cart.Lines, it.canonical())
	}
	return cart, p.PaymentMethod, nil
}

func (it linePayload) canonical() orders.CartLine {
	l := orders.CartLine{
		ProductID:       int64(firstID(it.ProductRef, it.ProductID, it.IDProducto, it.productID())),
		Quantity:        1,
		UnitPrice:       firstDecimal(it.UnitPrice, it.PrecioUnitario),
		LegacyUnitPrice: firstDecimal(it.UnitPriceLegacy, it.PrecioUnitarioLegacy),
	}
	if it.Quantity != nil || it.Cantidad != nil {
		l.Quantity = int(firstID(it.Quantity, it.Cantidad))
	}
	if it.Product != nil {
		if base := firstDecimal(it.Product.BasePrice, it.Product.PrecioBase, it.Product.Price); base != nil {
			l.Product = &orders.ProductSnapshot{BasePrice: *base}
		}
	}
	if it.Customization != nil {
		if s := firstDecimal(it.Customization.Surcharge, it.Customization.PrecioExtra); s != nil {
			l.Surcharge = *s
		}
	}
	return l
}

func (it linePayload) productID() *flexID {
	if it.Product == nil {
		return nil
	}
	if it.Product.ID != nil {
		return it.Product.ID
	}
	return it.Product.IDProducto
}

func firstID(ids ...*flexID) flexID {
	for _, id := range ids {
		if id != nil {
			return *id
		}
	}
	return 0
}

func firstDecimal(ds ...*decimal.Decimal) *decimal.Decimal {
	for _, d := range ds {
		if d != nil {
			return d
		}
	}
	return nil
}
