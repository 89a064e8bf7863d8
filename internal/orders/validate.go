package orders

import (
	"errors"
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(cartStructValidation, Cart{})
	v.RegisterStructValidation(cartLineStructValidation, CartLine{})
	return v
}

func cartStructValidation(sl validatorv10.StructLevel) {
	c := sl.Current().Interface().(Cart)
	if c.Total != nil && c.Total.IsNegative() {
		sl.ReportError(c.Total, "total", "Total", "nonnegative", "")
	}
}

// cartLineStructValidation rejects negative price-bearing fields.
func cartLineStructValidation(sl validatorv10.StructLevel) {
	l := sl.Current().Interface().(CartLine)
	if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
		sl.ReportError(l.UnitPrice, "unitPrice", "UnitPrice", "nonnegative", "")
	}
	if l.LegacyUnitPrice != nil && l.LegacyUnitPrice.IsNegative() {
		sl.ReportError(l.LegacyUnitPrice, "legacyUnitPrice", "LegacyUnitPrice", "nonnegative", "")
	}
	if l.Product != nil && l.Product.BasePrice.IsNegative() {
		sl.ReportError(l.Product.BasePrice, "basePrice", "BasePrice", "nonnegative", "")
	}
	if l.Surcharge.IsNegative() {
		sl.ReportError(l.Surcharge, "surcharge", "Surcharge", "nonnegative", "")
	}
}

// validateCart reports the first failing field, in declaration order, as
// ErrInvalidInput.
func validateCart(v *validatorv10.Validate, c Cart) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Errorf("%w: %s failed %s", ErrInvalidInput, ve[0].StructNamespace(), ve[0].Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
