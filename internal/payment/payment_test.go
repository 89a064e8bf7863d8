package payment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	cases := map[string]Method{
		"":                 MethodCard,
		"card":             MethodCard,
		"tarjeta":          MethodCard,
		"paypal":           MethodPayPal,
		"contraentrega":    MethodCashOnDelivery,
		"cash_on_delivery": MethodCashOnDelivery,
	}
	for in, want := range cases {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMethod("bitcoin")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestSimulator_Charge(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &Simulator{now: func() time.Time { return fixed }}

	r, err := s.Charge(context.Background(), MethodPayPal, decimal.NewFromInt(30000))

	require.NoError(t, err)
	assert.True(t, r.Paid())
	_, perr := uuid.Parse(r.Ref())
	assert.NoError(t, perr)
	assert.Equal(t, MethodPayPal, r.Method())
	assert.True(t, r.Amount().Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, fixed, r.PaidAt())
}

func TestSimulator_Rejects(t *testing.T) {
	s := NewSimulator(0)

	_, err := s.Charge(context.Background(), Method("cheque"), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = s.Charge(context.Background(), MethodCard, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestSimulator_ContextCancelled(t *testing.T) {
	s := NewSimulator(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := s.Charge(ctx, MethodCard, decimal.NewFromInt(10))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, r.Paid())
}

func TestReceipt_ZeroValueIsUnpaid(t *testing.T) {
	assert.False(t, Receipt{}.Paid())
}
