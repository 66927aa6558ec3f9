package crypto

import (
	"golang.org/x/crypto/sha3"
)

// Keccak256 calculates the legacy Keccak-256 hash over the concatenation of
// all inputs. This is the EVM hashing primitive, not NIST SHA3-256.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 and returns a fixed 32-byte array
func Keccak256Hash(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], Keccak256(data...))
	return out
}
