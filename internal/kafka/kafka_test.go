package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ariefcatur/storefront-orders/internal/events"
	"github.com/ariefcatur/storefront-orders/internal/orders"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestProducer_FlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 16, zap.NewNop())
	p.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Publish(context.Background(), []byte("k"), []byte("v")))
	}
	p.Close()
	p.Close()
	p.WaitClosed()

	assert.Len(t, w.msgs, 5)
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), nil, nil), ErrProducerClosed)
}

func TestProducer_StopsWithContext(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 4, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	require.NoError(t, p.Publish(context.Background(), []byte("k"), []byte("v")))

	cancel()

	select {
	case <-p.closeCh:
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not stop")
	}
	assert.Len(t, w.msgs, 1)
}

type capturePublisher struct {
	key, value []byte
	headers    []kafka.Header
}

func (c *capturePublisher) Publish(_ context.Context, key, value []byte, headers ...kafka.Header) error {
	c.key, c.value, c.headers = key, value, headers
	return nil
}

func TestOrderEvents_OrderPlaced(t *testing.T) {
	cp := &capturePublisher{}
	placedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-9")

	err := NewOrderEvents(cp, "order-api").OrderPlaced(ctx, orders.Order{
		ID: 41, CustomerID: 7, Status: orders.StatusPaid, Total: decimal.NewFromInt(30000), CreatedAt: placedAt,
		Lines: []orders.Line{{ProductID: 3, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("41"), cp.key)
	require.Len(t, cp.headers, 2)
	assert.Equal(t, events.EventOrderPlaced, string(cp.headers[0].Value))

	env, err := events.DecodeEnvelope(cp.value)
	require.NoError(t, err)
	assert.Equal(t, events.EventOrderPlaced, env.EventType)
	assert.Equal(t, "order-api", env.Producer)
	assert.Equal(t, "41", env.CorrelationID)
	assert.Equal(t, "req-9", env.TraceID)

	p, err := events.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, []events.LineQty{{ProductID: 3, Quantity: 2}}, p.Lines)
	assert.Equal(t, "paid", p.Status)
	assert.True(t, placedAt.Equal(p.PlacedAt))
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestConsumer_CommitsOnlyHandledMessages(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Offset: 1}, {Offset: 2}, {Offset: 3}}}
	c := newConsumer(r, 2, zap.NewNop())
	c.backoff = time.Millisecond

	var calls sync.Map
	var wg sync.WaitGroup
	wg.Add(1 + c.attempts + 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(_ context.Context, m kafka.Message) error {
			defer wg.Done()
			n, _ := calls.LoadOrStore(m.Offset, new(atomic.Int32))
			n.(*atomic.Int32).Add(1)
			if m.Offset == 2 {
				return errors.New("boom")
			}
			return nil
		})
	}()

	wg.Wait()
	cancel()
	require.NoError(t, <-done)

	assert.ElementsMatch(t, []int64{1, 3}, r.committed)
	n, _ := calls.Load(int64(2))
	assert.Equal(t, int32(c.attempts), n.(*atomic.Int32).Load())
	assert.True(t, r.closed)
}

func TestConsumer_RetriesTransientFailure(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Offset: 1}, {Offset: 2}, {Offset: 3}}}
	c := newConsumer(r, 1, zap.NewNop())
	c.backoff = time.Millisecond

	var failed atomic.Bool
	var wg sync.WaitGroup
	wg.Add(4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(_ context.Context, m kafka.Message) error {
			defer wg.Done()
			if m.Offset == 2 && failed.CompareAndSwap(false, true) {
				return errors.New("redis timeout")
			}
			return nil
		})
	}()

	wg.Wait()
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1, 2, 3}, r.committed)
}
