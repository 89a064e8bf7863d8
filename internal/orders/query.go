package orders

import (
	"context"

	"go.uber.org/zap"
)

type OrderReader interface {
	GetByID(ctx context.Context, orderID int64) (Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Summary, error)
}

// DetailCache holds stored order records, not display-normalized ones.
type DetailCache interface {
	Get(ctx context.Context, orderID int64) (Order, bool, error)
	Set(ctx context.Context, o Order) error
}

type QueryService struct {
	store OrderReader
	cache DetailCache
	log   *zap.Logger
}

// NewQueryService builds the read path. cache may be nil.
func NewQueryService(store OrderReader, cache DetailCache, log *zap.Logger) *QueryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryService{store: store, cache: cache, log: log.Named("query")}
}

// GetOrder returns the order with lines, or ErrNotFound.
func (s *QueryService) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	o.Status = o.Status.Display()
	return o, nil
}

func (s *QueryService) load(ctx context.Context, orderID int64) (Order, error) {
	if s.cache != nil {
		o, ok, err := s.cache.Get(ctx, orderID)
		if err != nil {
			s.log.Warn("order cache get", zap.Int64("order_id", orderID), zap.Error(err))
		} else if ok {
			return o, nil
		}
	}

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, o); err != nil {
			s.log.Warn("order cache set", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}
	return o, nil
}

// ListOrders returns the customer's order summaries, newest first.
func (s *QueryService) ListOrders(ctx context.Context, customerID int64) ([]Summary, error) {
	list, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Status = list[i].Status.Display()
	}
	return list, nil
}
