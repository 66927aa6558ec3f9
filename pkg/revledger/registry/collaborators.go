package registry

import (
	"encoding/json"

	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
)

// External collaborators consumed by the ledger engine. Each is a narrow
// interface; production deployments back them with the generic DID registry
// and credential-definition registry, tests and demos with the in-memory
// implementations.

// CredentialDefinition is the referenced, pre-existing credential definition
// record a revocation registry definition points at.
type CredentialDefinition struct {
	Id       string          `json:"id"`
	SchemaId string          `json:"schemaId,omitempty"`
	IssuerId string          `json:"issuerId"`
	Tag      string          `json:"tag,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// CredentialDefinitionResolver resolves credential definitions at definition
// creation time.
type CredentialDefinitionResolver interface {
	ResolveCredentialDefinition(credDefId string) (*CredentialDefinition, error)
}

// DidRegistry answers issuer-ownership queries against the external DID registry
type DidRegistry interface {
	IsControlledBy(issuerId string, identity crypto.Address) (bool, error)
}

// Role is the submission role an account holds on the ledger
type Role int

const (
	RoleNone Role = iota
	RoleTrustee
	RoleEndorser
	RoleSteward
)

func (r Role) String() string {
	switch r {
	case RoleTrustee:
		return "trustee"
	case RoleEndorser:
		return "endorser"
	case RoleSteward:
		return "steward"
	default:
		return "none"
	}
}

// CanSubmit reports whether the role permits submitting writes
func (r Role) CanSubmit() bool {
	return r == RoleTrustee || r == RoleEndorser || r == RoleSteward
}

// RoleRegistry resolves the role held by an account
type RoleRegistry interface {
	RoleOf(party crypto.Address) (Role, bool)
}
