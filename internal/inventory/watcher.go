package inventory

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/storefront-orders/internal/events"
)

type StockReader interface {
	Stock(ctx context.Context, productID int64) (int, error)
}

type Deduper interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

// Watcher reads stock after each placed order and warns when a product runs
// low. It never writes stock.
type Watcher struct {
	stock     StockReader
	dedup     Deduper
	threshold int
	log       *zap.Logger
}

// NewWatcher builds the OrderPlaced handler. dedup may be nil.
func NewWatcher(stock StockReader, dedup Deduper, threshold int, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{stock: stock, dedup: dedup, threshold: threshold, log: log.Named("stockwatch")}
}

// HandleOrderPlaced is a consumer handler. Malformed messages are logged and
// acknowledged. Storage errors are returned so the consumer retries the
// message; the dedup mark is cleared first so a retry is not skipped.
func (w *Watcher) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	env, err := events.DecodeEnvelope(m.Value)
	if err != nil {
		w.log.Warn("skip message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != events.EventOrderPlaced {
		return nil
	}
	p, err := events.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
	if err != nil {
		w.log.Warn("skip event", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	if w.dedup != nil {
		first, err := w.dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			return err
		}
		if !first {
			w.log.Debug("duplicate event", zap.String("event_id", env.EventID))
			return nil
		}
	}

	for _, l := range p.Lines {
		stock, err := w.stock.Stock(ctx, l.ProductID)
		if errors.Is(err, ErrProductNotFound) {
			w.log.Warn("product gone", zap.Int64("order_id", p.OrderID), zap.Int64("product_id", l.ProductID))
			continue
		}
		if err != nil {
			if w.dedup != nil {
				if ferr := w.dedup.Forget(ctx, env.EventID); ferr != nil {
					w.log.Warn("forget event", zap.String("event_id", env.EventID), zap.Error(ferr))
				}
			}
			return err
		}
		if stock <= w.threshold {
			w.log.Warn("low stock",
				zap.Int64("product_id", l.ProductID),
				zap.Int("stock", stock),
				zap.Int("threshold", w.threshold),
				zap.Int64("order_id", p.OrderID),
				zap.String("trace_id", env.TraceID))
		}
	}
	return nil
}
