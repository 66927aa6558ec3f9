package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec"
)

// The recoverable-signature scheme used for delegated authorization. A compact
// signature carries a recovery id, so verifiers recover the signer's public
// key (and thus address) from the digest alone — the ecrecover model.

// GenerateKey creates a new random secp256k1 private key
func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey(btcec.S256())
}

// AddressFromPublicKey derives the account address from a public key: the last
// 20 bytes of the Keccak-256 hash of the uncompressed key without its prefix
// byte.
func AddressFromPublicKey(pub *btcec.PublicKey) Address {
	raw := pub.SerializeUncompressed()
	sum := Keccak256(raw[1:])

	var a Address
	copy(a[:], sum[len(sum)-AddressLength:])
	return a
}

// AddressFromPrivateKey derives the account address controlled by a private key
func AddressFromPrivateKey(priv *btcec.PrivateKey) Address {
	return AddressFromPublicKey(priv.PubKey())
}

// SignRecoverable produces a 65-byte compact recoverable signature over a
// 32-byte digest.
func SignRecoverable(priv *btcec.PrivateKey, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	return btcec.SignCompact(btcec.S256(), priv, digest, false)
}

// RecoverAddress recovers the signer's address from a compact recoverable
// signature and the digest it was produced over.
func RecoverAddress(digest []byte, signature []byte) (Address, error) {
	if len(digest) != 32 {
		return Address{}, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	pub, _, err := btcec.RecoverCompact(btcec.S256(), signature, digest)
	if err != nil {
		return Address{}, fmt.Errorf("signature recovery failed: %v", err)
	}
	return AddressFromPublicKey(pub), nil
}
