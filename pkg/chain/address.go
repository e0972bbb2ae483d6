package chain

import (
	"bytes"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

// ParseAddress accepts both the user-friendly (base64) and the raw (wc:hex) forms.
func ParseAddress(s string) (*address.Address, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		return address.ParseRawAddr(s)
	}
	return address.ParseAddr(s)
}

func ValidateAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

// SameAddress compares workchain and account id, ignoring flags and encoding.
func SameAddress(a, b *address.Address) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Workchain() == b.Workchain() && bytes.Equal(a.Data(), b.Data())
}

// AddressValidator satisfies consumers that take the check as a dependency.
type AddressValidator struct{}

func (AddressValidator) ValidateAddress(s string) bool {
	return ValidateAddress(s)
}
