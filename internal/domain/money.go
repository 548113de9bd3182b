package domain

import (
	"errors"
	"math"
	"strconv"
)

// Money is a currency amount in cents. Sums of Money are exact.
type Money int64

// MaxAmount is the largest price or budget accepted, in currency units.
// Sums of up to tens of millions of such amounts still fit in a Money.
const MaxAmount = 1e9

var (
	errAmountNotFinite = errors.New("amount is not a finite number")
	errAmountNegative  = errors.New("amount is negative")
	errAmountTooLarge  = errors.New("amount exceeds the supported maximum")
)

// ParseAmount converts a decimal amount to Money, rejecting values that are
// not finite, negative or larger than MaxAmount.
func ParseAmount(amount float64) (Money, error) {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		return 0, errAmountNotFinite
	case amount < 0:
		return 0, errAmountNegative
	case amount > MaxAmount:
		return 0, errAmountTooLarge
	}
	return MoneyFromFloat(amount), nil
}

// MoneyFromFloat converts a decimal amount (e.g. 2.50) to cents, rounding
// half away from zero. The amount must be within [-MaxAmount, MaxAmount];
// use ParseAmount for untrusted input.
func MoneyFromFloat(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// Float returns the amount as a decimal number of currency units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// String formats the amount with two fraction digits and no currency symbol.
func (m Money) String() string {
	return strconv.FormatFloat(m.Float(), 'f', 2, 64)
}

// MarshalJSON renders the amount as a JSON number with two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}
