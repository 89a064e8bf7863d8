package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ariefcatur/storefront-orders/internal/orders"
	"github.com/ariefcatur/storefront-orders/internal/payment"
)

type Placer interface {
	Validate(cart orders.Cart) error
	PlaceOrder(ctx context.Context, proof orders.PaymentProof, cart orders.Cart) (orders.Order, error)
}

type Querier interface {
	GetOrder(ctx context.Context, orderID int64) (orders.Order, error)
	ListOrders(ctx context.Context, customerID int64) ([]orders.Summary, error)
}

type OrdersHandler struct {
	Placer   Placer
	Query    Querier
	Payments payment.Gateway
	Pricing  orders.Pricing
	// TokenSecret enables bearer auth on every order route when set.
	TokenSecret []byte
	Timeout     time.Duration
	Log         *zap.Logger
}

type placeOrderResp struct {
	OrderID    int64           `json:"orderId"`
	CustomerID int64           `json:"customerId"`
	Total      decimal.Decimal `json:"total"`
	Status     orders.Status   `json:"status"`
	PaymentRef string          `json:"paymentRef"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	r.Route("/api/orders", func(r chi.Router) {
		if len(h.TokenSecret) > 0 {
			r.Use(BearerAuth(h.TokenSecret))
		}
		r.Post("/", h.placeOrder)
		r.Get("/{id}", h.getOrder)
		r.Get("/user/{id}", h.listOrders)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *OrdersHandler) writeError(w http.ResponseWriter, err error) {
	var code int
	msg := err.Error()
	switch {
	case errors.Is(err, orders.ErrInvalidInput), errors.Is(err, payment.ErrUnknownMethod):
		code = http.StatusBadRequest
	case errors.Is(err, payment.ErrDeclined):
		code = http.StatusPaymentRequired
	case errors.Is(err, orders.ErrInsufficientStock):
		code = http.StatusConflict
	case errors.Is(err, orders.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, orders.ErrOrderCreationFailed):
		code = http.StatusInternalServerError
	default:
		h.Log.Error("request failed", zap.Error(err))
		code, msg = http.StatusInternalServerError, "internal error"
	}
	writeJSON(w, code, errorBody{Error: msg})
}

func (h *OrdersHandler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.Timeout)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	cart, rawMethod, err := decodeCart(r.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if id, ok := CustomerFromContext(r.Context()); ok {
		cart.CustomerID = id
	}
	method, err := payment.ParseMethod(rawMethod)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.Placer.Validate(cart); err != nil {
		h.writeError(w, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	receipt, err := h.Payments.Charge(ctx, method, h.Pricing.Total(cart))
	if err != nil {
		h.writeError(w, err)
		return
	}

	o, err := h.Placer.PlaceOrder(ctx, receipt, cart)
	if err != nil {
		h.Log.Warn("charged but order not placed",
			zap.String("payment_ref", receipt.Ref()),
			zap.Int64("customer_id", cart.CustomerID),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResp{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total,
		Status:     o.Status,
		PaymentRef: receipt.Ref(),
	})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid order id"})
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	o, err := h.Query.GetOrder(ctx, orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// Someone else's order is indistinguishable from a missing one.
	if id, authed := CustomerFromContext(r.Context()); authed && id != o.CustomerID {
		h.writeError(w, orders.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid customer id"})
		return
	}
	if id, authed := CustomerFromContext(r.Context()); authed && id != customerID {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	list, err := h.Query.ListOrders(ctx, customerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
