// Package payment simulates the checkout payment collaborator. A successful
// charge issues a Receipt, which order placement requires as proof of payment.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCard           Method = "card"
	MethodPayPal         Method = "paypal"
	MethodCashOnDelivery Method = "cash_on_delivery"
)

var (
	ErrUnknownMethod = errors.New("unknown payment method")
	ErrDeclined      = errors.New("payment declined")
)

// ParseMethod accepts the canonical names and the storefront's legacy ones.
// An empty string selects card.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "card", "tarjeta":
		return MethodCard, nil
	case "paypal":
		return MethodPayPal, nil
	case "cash_on_delivery", "contraentrega":
		return MethodCashOnDelivery, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Receipt is only minted by a Gateway. The zero value is unpaid.
type Receipt struct {
	ref    string
	method Method
	amount decimal.Decimal
	paidAt time.Time
}

func (r Receipt) Paid() bool              { return r.ref != "" }
func (r Receipt) Ref() string             { return r.ref }
func (r Receipt) Method() Method          { return r.method }
func (r Receipt) Amount() decimal.Decimal { return r.amount }
func (r Receipt) PaidAt() time.Time       { return r.paidAt }

type Gateway interface {
	Charge(ctx context.Context, method Method, amount decimal.Decimal) (Receipt, error)
}

// Simulator approves every well-formed charge after Delay.
type Simulator struct {
	Delay time.Duration
	now   func() time.Time
}

func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{Delay: delay, now: time.Now}
}

func (s *Simulator) Charge(ctx context.Context, method Method, amount decimal.Decimal) (Receipt, error) {
	switch method {
	case MethodCard, MethodPayPal, MethodCashOnDelivery:
	default:
		return Receipt{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if amount.IsNegative() {
		return Receipt{}, fmt.Errorf("%w: negative amount %s", ErrDeclined, amount)
	}

	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return Receipt{
		ref:    uuid.NewString(),
		method: method,
		amount: amount,
		paidAt: now().UTC(),
	}, nil
}
