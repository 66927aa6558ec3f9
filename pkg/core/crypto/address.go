package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte length of an account address
const AddressLength = 20

// Address is an Ethereum-style 20-byte account address derived from a
// secp256k1 public key.
type Address [AddressLength]byte

// IsZero reports whether the address is the zero address
func (a Address) IsZero() bool {
	return a == Address{}
}

// Bytes returns the address as a byte slice
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// String renders the address as 0x-prefixed lowercase hex
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ParseAddress parses a 0x-prefixed (or bare) hex address string
func ParseAddress(s string) (Address, error) {
	var a Address
	trimmed := strings.TrimPrefix(strings.ToLower(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %v", s, err)
	}
	if len(raw) != AddressLength {
		return a, fmt.Errorf("invalid address %q: expected %d bytes, got %d", s, AddressLength, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}
