package services

import (
	"github.com/pkg/errors"

	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/core/logger"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// Denial reasons carried in NotAuthorized errors
const (
	ReasonNotPermittedRole    = "NotPermittedRole"
	ReasonIssuerNotControlled = "IssuerNotControlled"
)

// IdentityAuthorizer resolves whether an acting party may write on behalf of a
// claimed identity, and whether that identity controls a given issuer DID.
// Both checks must pass; there is no partial authorization.
type IdentityAuthorizer struct {
	roles registry.RoleRegistry
	dids  registry.DidRegistry
	log   logger.Logger
}

// NewIdentityAuthorizer creates a new identity authorizer
func NewIdentityAuthorizer(roles registry.RoleRegistry, dids registry.DidRegistry, log logger.Logger) *IdentityAuthorizer {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &IdentityAuthorizer{roles: roles, dids: dids, log: log}
}

// Authorize checks, in order: the acting party holds a permitted submission
// role, and the identity controls the issuer DID.
func (a *IdentityAuthorizer) Authorize(actingParty crypto.Address, identity crypto.Address, issuerId string) error {
	role, ok := a.roles.RoleOf(actingParty)
	if !ok || !role.CanSubmit() {
		a.log.Debugf("authorization denied for %s: %s", actingParty, ReasonNotPermittedRole)
		return errors.Wrapf(registry.ErrNotAuthorized,
			"%s: account %s does not hold a permitted role", ReasonNotPermittedRole, actingParty)
	}

	controlled, err := a.dids.IsControlledBy(issuerId, identity)
	if err != nil {
		return errors.Wrapf(err, "ownership lookup failed for issuer %s", issuerId)
	}
	if !controlled {
		a.log.Debugf("authorization denied for %s: %s (issuer %s)", identity, ReasonIssuerNotControlled, issuerId)
		return errors.Wrapf(registry.ErrNotAuthorized,
			"%s: identity %s does not control issuer %s", ReasonIssuerNotControlled, identity, issuerId)
	}

	return nil
}
