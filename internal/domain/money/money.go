// Package money provides an exact-decimal monetary value object.
// Amounts are never represented as floats; all comparisons are exact.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	INR Currency = "INR"
	CNY Currency = "CNY"
	JPY Currency = "JPY"
)

// DefaultCurrency is used when a document does not specify one
const DefaultCurrency = USD

// Money is an immutable value object pairing an exact decimal amount
// with a currency. The zero value is 0 in the default currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates Money with the given amount and currency
func New(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewFromString creates Money from a decimal string representation
func NewFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return New(d, currency)
}

// MustFromString is NewFromString for constants and tests; panics on bad input
func MustFromString(amount string, currency Currency) Money {
	m, err := NewFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns 0 in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the underlying decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code. The zero value reports the
// default currency so reads on absent fields stay total.
func (m Money) Currency() Currency {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// IsZero reports whether the amount is exactly zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports whether the amount is strictly less than zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Equal reports exact equality of amount and currency
func (m Money) Equal(other Money) bool {
	return m.Currency() == other.Currency() && m.amount.Equal(other.amount)
}

// Add returns m + other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.Currency()}, nil
}

// Sub returns m - other. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.Currency()}, nil
}

// String returns the amount followed by the currency code, e.g. "12.50 USD"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.String(), m.Currency())
}
