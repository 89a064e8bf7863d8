package orders

import (
	"context"
	"errors"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentProof is the capability issued by the payment collaborator.
// payment.Receipt implements it.
type PaymentProof interface {
	Paid() bool
}

// Publisher is told about every committed order.
type Publisher interface {
	OrderPlaced(ctx context.Context, o Order) error
}

type PlacementService struct {
	tx        Transactor
	pricing   Pricing
	publisher Publisher
	validate  *validatorv10.Validate
	log       *zap.Logger
}

// NewPlacementService wires the placement path. publisher may be nil.
func NewPlacementService(tx Transactor, pricing Pricing, publisher Publisher, log *zap.Logger) *PlacementService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlacementService{
		tx:        tx,
		pricing:   pricing,
		publisher: publisher,
		validate:  newValidator(),
		log:       log.Named("placement"),
	}
}

// Validate checks a cart without touching storage. Callers use it to reject
// a cart before charging for it.
func (s *PlacementService) Validate(cart Cart) error {
	return validateCart(s.validate, cart)
}

// PlaceOrder turns a paid cart into a committed order. Header, lines and
// stock decrements are written in one transaction; on any failure none of
// them are visible. Storage failures surface as ErrOrderCreationFailed.
func (s *PlacementService) PlaceOrder(ctx context.Context, proof PaymentProof, cart Cart) (Order, error) {
	if proof == nil || !proof.Paid() {
		return Order{}, ErrPaymentRequired
	}
	if err := s.Validate(cart); err != nil {
		return Order{}, err
	}

	total := s.pricing.Total(cart)
	if cart.Total != nil && s.pricing.TrustClientTotal {
		if computed := ComputedTotal(cart); !computed.Equal(total) {
			s.log.Warn("client total differs from line sum",
				zap.Int64("customer_id", cart.CustomerID),
				zap.String("client_total", total.String()),
				zap.String("computed_total", computed.String()))
		}
	}

	order := Order{CustomerID: cart.CustomerID, Status: StatusPaid, Total: total}
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		h, err := tx.Orders().CreateHeader(ctx, cart.CustomerID, StatusPaid, total)
		if err != nil {
			return err
		}

		lines := make([]Line, 0, len(cart.Lines))
		for i, cl := range cart.Lines {
			unit, src := ResolveUnitPrice(cl)
			if src == PriceNone {
				s.log.Warn("line has no price, charging zero",
					zap.Int64("order_id", h.ID),
					zap.Int("line", i),
					zap.Int64("product_id", cl.ProductID))
			}
			l := Line{
				ProductID: cl.ProductID,
				Quantity:  cl.Quantity,
				UnitPrice: unit,
				Subtotal:  unit.Mul(decimal.NewFromInt(int64(cl.Quantity))),
			}
			if err := tx.Orders().AppendLine(ctx, h.ID, l); err != nil {
				return err
			}
			if err := tx.Inventory().Decrement(ctx, cl.ProductID, cl.Quantity); err != nil {
				return err
			}
			lines = append(lines, l)
		}

		order.ID, order.CreatedAt, order.Lines = h.ID, h.CreatedAt, lines
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			s.log.Info("order rejected", zap.Int64("customer_id", cart.CustomerID), zap.Error(err))
			return Order{}, err
		}
		s.log.Error("order placement failed", zap.Int64("customer_id", cart.CustomerID), zap.Error(err))
		return Order{}, ErrOrderCreationFailed
	}

	s.log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.String("total", order.Total.String()),
		zap.Int("lines", len(order.Lines)))

	if s.publisher != nil {
		if err := s.publisher.OrderPlaced(ctx, order); err != nil {
			s.log.Warn("publish order placed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}
	return order, nil
}
