package services

import (
	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
)

// WriteRequest is the resolved authorship of a write: the identity that
// authorized its content and the party that submits it. For direct writes the
// two coincide; for delegated writes both are recovered from signatures by the
// endorsement service before anything downstream runs.
type WriteRequest struct {
	// Identity controls the issuer DID the write claims to act for
	Identity crypto.Address
	// ActingParty physically submits the write and must hold a permitted role
	ActingParty crypto.Address
}

// DirectRequest builds a WriteRequest for an identity submitting on its own behalf
func DirectRequest(identity crypto.Address) WriteRequest {
	return WriteRequest{Identity: identity, ActingParty: identity}
}

// Clock supplies the current ledger time in Unix seconds. Injectable so tests
// control entry timestamps.
type Clock func() int64
