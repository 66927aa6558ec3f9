package registry

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
)

// DefinitionKey is the content-derived identifier of a revocation registry
// definition: the Keccak-256 hash of its human-readable id string. The same id
// string always maps to the same key.
type DefinitionKey [32]byte

// IsZero reports whether the key is unset
func (k DefinitionKey) IsZero() bool {
	return k == DefinitionKey{}
}

// String renders the key as 0x-prefixed lowercase hex
func (k DefinitionKey) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

// Bytes returns the key as a byte slice
func (k DefinitionKey) Bytes() []byte {
	out := make([]byte, len(k))
	copy(out, k[:])
	return out
}

// KeyForId derives the definition key for a human-readable definition id
func KeyForId(id string) DefinitionKey {
	return DefinitionKey(crypto.Keccak256Hash([]byte(id)))
}

// ParseDefinitionKey parses a 0x-prefixed (or bare) hex key string
func ParseDefinitionKey(s string) (DefinitionKey, error) {
	var k DefinitionKey
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if err != nil {
		return k, fmt.Errorf("invalid definition key %q: %v", s, err)
	}
	if len(raw) != len(k) {
		return k, fmt.Errorf("invalid definition key %q: expected %d bytes, got %d", s, len(k), len(raw))
	}
	copy(k[:], raw)
	return k, nil
}

// BuildDefinitionId builds the human-readable id of a revocation registry
// definition from its issuer, credential definition and tag.
func BuildDefinitionId(issuerId string, credDefId string, tag string) string {
	return fmt.Sprintf("%s/anoncreds/v0/REV_REG_DEF/%s/%s", issuerId, credDefId, tag)
}
