package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rawDeposit      = "0:abababababababababababababababababababababababababababababababab"
	friendlyDeposit = "EQCrq6urq6urq6urq6urq6urq6urq6urq6urq6urq6urq8Uk"
	nonBounceable   = "UQCrq6urq6urq6urq6urq6urq6urq6urq6urq6urq6urq5jh"
	rawJetton       = "0:1212121212121212121212121212121212121212121212121212121212121212"
	otherFriendly   = "EQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAM9c"
	otherRaw        = "0:0000000000000000000000000000000000000000000000000000000000000000"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{name: "User-friendly bounceable", address: friendlyDeposit, valid: true},
		{name: "User-friendly non-bounceable", address: nonBounceable, valid: true},
		{name: "Raw form", address: rawDeposit, valid: true},
		{name: "Broken checksum", address: "EQCrq6urq6urq6urq6urq6urq6urq6urq6urq6urq6urq8Ux", valid: false},
		{name: "Empty", address: "", valid: false},
		{name: "Garbage", address: "not-an-address", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateAddress(tt.address))
			assert.Equal(t, tt.valid, AddressValidator{}.ValidateAddress(tt.address))
		})
	}
}

func TestSameAddress(t *testing.T) {
	raw, err := ParseAddress(rawDeposit)
	require.NoError(t, err)
	friendly, err := ParseAddress(friendlyDeposit)
	require.NoError(t, err)
	nb, err := ParseAddress(nonBounceable)
	require.NoError(t, err)
	other, err := ParseAddress(otherFriendly)
	require.NoError(t, err)

	assert.True(t, SameAddress(raw, friendly))
	assert.True(t, SameAddress(friendly, nb))
	assert.False(t, SameAddress(raw, other))
	assert.False(t, SameAddress(raw, nil))
}
