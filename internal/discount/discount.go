// Package discount converts a discount specification (percentage or fixed)
// plus a base amount into a bounded dollar amount.
package discount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind selects how a discount value is interpreted.
type Kind string

const (
	Percentage Kind = "percentage"
	Fixed      Kind = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Amount returns the dollar amount a discount takes off base, rounded to
// cents. Percentage values are clamped to [0,100], fixed values to [0,base].
// A non-positive base always yields zero.
func Amount(kind Kind, value, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	switch kind {
	case Percentage:
		v := clamp(value, decimal.Zero, hundred)
		return base.Mul(v).Div(hundred).Round(2)
	case Fixed:
		v := clamp(value, decimal.Zero, base)
		return v.Round(2)
	default:
		return decimal.Zero
	}
}

// ValidationError carries the nearest acceptable value alongside the message
// so callers can offer an adjusted discount instead of failing outright.
type ValidationError struct {
	Message   string
	Suggested decimal.Decimal
}

func (e *ValidationError) Error() string { return e.Message }

// Validate rejects non-positive values and values exceeding the applicable
// bound for the discount kind.
func Validate(kind Kind, value, base decimal.Decimal) *ValidationError {
	if !value.IsPositive() {
		return &ValidationError{Message: "discount value must be greater than zero", Suggested: decimal.Zero}
	}
	switch kind {
	case Percentage:
		if value.GreaterThan(hundred) {
			return &ValidationError{
				Message:   fmt.Sprintf("percentage discount cannot exceed 100, got %s", value),
				Suggested: hundred,
			}
		}
	case Fixed:
		if value.GreaterThan(base) {
			return &ValidationError{
				Message:   fmt.Sprintf("fixed discount cannot exceed the sale subtotal %s, got %s", base.StringFixed(2), value),
				Suggested: base.Round(2),
			}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("unknown discount type %q", kind), Suggested: decimal.Zero}
	}
	return nil
}

func clamp(v, low, high decimal.Decimal) decimal.Decimal {
	if v.LessThan(low) {
		return low
	}
	if v.GreaterThan(high) {
		return high
	}
	return v
}
