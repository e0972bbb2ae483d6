package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  string
		expectErr bool
	}{
		{name: "Plain amount", input: "10.00", expected: "10"},
		{name: "Small amount", input: "0.015", expected: "0.015"},
		{name: "Surrounding spaces", input: " 5 ", expected: "5"},
		{name: "Empty string", input: "", expectErr: true},
		{name: "Negative amount", input: "-1", expectErr: true},
		{name: "Not a number", input: "abc", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.input)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.String())
		})
	}
}

func TestParseRate(t *testing.T) {
	r, err := ParseRate("0.01")
	require.NoError(t, err)
	assert.True(t, r.Equal(decimal.RequireFromString("0.01")))

	_, err = ParseRate("1")
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = ParseRate("-0.1")
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestEscrowAndTotalCost(t *testing.T) {
	escrow := Escrow(decimal.RequireFromString("0.015"), 5)
	assert.Equal(t, "0.075", escrow.String())

	cost := TotalCost(escrow, decimal.RequireFromString("0.01"))
	assert.Equal(t, "0.075", cost.Subtotal.String())
	assert.Equal(t, "0.00075", cost.Fee.String())
	assert.Equal(t, "0.07575", cost.Total.String())
}

func TestPayout(t *testing.T) {
	payout, fee := Payout(decimal.RequireFromString("5.00"), decimal.RequireFromString("0.01"))
	assert.True(t, payout.Equal(decimal.RequireFromString("4.95")))
	assert.True(t, fee.Equal(decimal.RequireFromString("0.05")))
	assert.True(t, payout.Add(fee).Equal(decimal.RequireFromString("5")))
}

func TestRepeatedAdditionsDoNotDrift(t *testing.T) {
	sum := decimal.Zero
	reward := decimal.RequireFromString("0.1")
	for i := 0; i < 1000; i++ {
		sum = sum.Add(reward)
	}
	assert.Equal(t, "100", sum.String())
}

func TestUnits(t *testing.T) {
	d, err := FromUnits("4950000", 6)
	require.NoError(t, err)
	assert.Equal(t, "4.95", d.String())

	assert.Equal(t, "4950000", ToUnits(decimal.RequireFromString("4.95"), 6))
	assert.Equal(t, "750", ToUnits(decimal.RequireFromString("0.00075"), 6))
	assert.Equal(t, "0", ToUnits(decimal.RequireFromString("0.0000001"), 6))

	_, err = FromUnits("1.5", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
