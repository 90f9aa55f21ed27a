package shared

import (
	"errors"
	"fmt"
	"math"
)

// Money is a value object: an amount in the currency's minor unit plus the
// currency code. It is immutable; arithmetic returns new values.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney creates a money value. Amounts are in the minor unit (cents).
func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Add returns the sum of two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.New("cannot add money with different currencies")
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Subtract returns the difference of two amounts of the same currency.
func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.New("cannot subtract money with different currencies")
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Multiply scales the amount by a non-negative factor, guarding overflow.
func (m Money) Multiply(factor int) (Money, error) {
	if factor < 0 {
		return Money{}, errors.New("cannot multiply money by a negative factor")
	}
	if factor != 0 && m.Amount > math.MaxInt64/int64(factor) {
		return Money{}, errors.New("money amount overflow")
	}
	return Money{Amount: m.Amount * int64(factor), Currency: m.Currency}, nil
}

// IsGreaterThan compares amounts; currencies must match for a meaningful
// comparison, which callers ensure.
func (m Money) IsGreaterThan(other Money) bool {
	return m.Amount > other.Amount
}

// Equals reports value equality of amount and currency.
func (m Money) Equals(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

// String renders the amount for diagnostics, e.g. "1050 EUR".
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
