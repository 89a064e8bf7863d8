package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"

	"github.com/ariefcatur/storefront-orders/internal/events"
	"github.com/ariefcatur/storefront-orders/internal/orders"
)

type publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error
}

// OrderEvents publishes committed orders as OrderPlaced envelopes.
type OrderEvents struct {
	p       publisher
	service string
}

func NewOrderEvents(p publisher, service string) *OrderEvents {
	return &OrderEvents{p: p, service: service}
}

var _ orders.Publisher = (*OrderEvents)(nil)

func (e *OrderEvents) OrderPlaced(ctx context.Context, o orders.Order) error {
	payload := events.OrderPlacedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		Total:      o.Total,
		Lines:      make([]events.LineQty, 0, len(o.Lines)),
		PlacedAt:   o.CreatedAt,
	}
	for _, l := range o.Lines {
		payload.Lines = append(payload.Lines, events.LineQty{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	env, err := events.NewEnvelope(events.EventOrderPlaced, e.service,
		strconv.FormatInt(o.ID, 10), middleware.GetReqID(ctx), payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return e.p.Publish(ctx, events.PartitionKey(o.ID), value,
		kafka.Header{Key: "x-event-type", Value: []byte(events.EventOrderPlaced)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
