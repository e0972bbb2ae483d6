// Package money holds the decimal arithmetic shared by escrow, fee and balance computations.
// Amounts never pass through float64.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidRate   = errors.New("invalid rate")
)

// Cost is the funding breakdown of a campaign: escrow subtotal plus the additive platform fee.
type Cost struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Fee      decimal.Decimal `json:"fee"`
	Total    decimal.Decimal `json:"total"`
}

// Parse reads a non-negative decimal string.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseRate reads a fee rate in [0, 1).
func ParseRate(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, ErrInvalidRate
	}
	if d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, ErrInvalidRate
	}
	return d, nil
}

func Fee(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}

func Escrow(reward decimal.Decimal, slots int) decimal.Decimal {
	return reward.Mul(decimal.NewFromInt(int64(slots)))
}

func TotalCost(subtotal, rate decimal.Decimal) Cost {
	fee := Fee(subtotal, rate)
	return Cost{
		Subtotal: subtotal,
		Fee:      fee,
		Total:    subtotal.Add(fee),
	}
}

// Payout splits a withdrawal amount into what leaves the system and what the platform keeps.
func Payout(amount, rate decimal.Decimal) (payout, fee decimal.Decimal) {
	fee = Fee(amount, rate)
	return amount.Sub(fee), fee
}

// FromUnits converts an integer amount of the smallest token unit into a decimal.
func FromUnits(units string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(units)
	if err != nil || !d.IsInteger() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Shift(-decimals), nil
}

// ToUnits converts a decimal into the smallest token unit, truncating dust below it.
func ToUnits(amount decimal.Decimal, decimals int32) string {
	return amount.Shift(decimals).Truncate(0).String()
}
