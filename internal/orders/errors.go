package orders

import (
	"errors"

	"github.com/ariefcatur/storefront-orders/internal/inventory"
)

var (
	// ErrInvalidInput: the cart was rejected before any transaction opened.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPaymentRequired is an ErrInvalidInput: no paid receipt was presented.
	ErrPaymentRequired = &paymentRequiredError{}
	// ErrInsufficientStock: a line asked for more than the product has.
	ErrInsufficientStock = inventory.ErrInsufficientStock
	// ErrOrderCreationFailed hides every storage failure during placement.
	ErrOrderCreationFailed = errors.New("order could not be created")
	ErrNotFound            = errors.New("order not found")
)

type paymentRequiredError struct{}

func (*paymentRequiredError) Error() string { return "payment required" }

func (*paymentRequiredError) Is(target error) bool { return target == ErrInvalidInput }
