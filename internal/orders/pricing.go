package orders

import "github.com/shopspring/decimal"

type PriceSource string

const (
	PriceExplicit PriceSource = "explicit"
	PriceLegacy   PriceSource = "legacy"
	PriceSnapshot PriceSource = "snapshot"
	PriceNone     PriceSource = "none"
)

// ResolveUnitPrice picks the unit price to charge for a line. The first
// present value wins: explicit unit price, legacy unit price, snapshot base
// price plus surcharge. A line with none of them is priced at zero and
// reported as PriceNone so the caller can flag it.
func ResolveUnitPrice(l CartLine) (decimal.Decimal, PriceSource) {
	switch {
	case l.UnitPrice != nil:
		return *l.UnitPrice, PriceExplicit
	case l.LegacyUnitPrice != nil:
		return *l.LegacyUnitPrice, PriceLegacy
	case l.Product != nil:
		return l.Product.BasePrice.Add(l.Surcharge), PriceSnapshot
	default:
		return decimal.Zero, PriceNone
	}
}

// Pricing holds the order-level total policy.
type Pricing struct {
	// TrustClientTotal makes a client-asserted total authoritative when present.
	TrustClientTotal bool
}

// Subtotal is quantity × resolved unit price.
func Subtotal(l CartLine) decimal.Decimal {
	unit, _ := ResolveUnitPrice(l)
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ComputedTotal is the sum of resolved line subtotals.
func ComputedTotal(c Cart) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(Subtotal(l))
	}
	return total
}

// Total applies the policy to a cart.
func (p Pricing) Total(c Cart) decimal.Decimal {
	if p.TrustClientTotal && c.Total != nil {
		return *c.Total
	}
	return ComputedTotal(c)
}
