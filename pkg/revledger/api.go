package revledger

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ajna-inc/kanon-ledger/pkg/core/common"
	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/core/logger"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/repository"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/services"
)

// RevocationApi is the public surface of the revocation ledger engine
type RevocationApi struct {
	defs        *services.DefinitionService
	chain       *services.EntryChainService
	history     *services.HistoryService
	status      *services.StatusListService
	endorsement *services.EndorsementService
	clock       services.Clock
	log         logger.Logger
}

// NewRevocationApi creates the API facade over the engine services
func NewRevocationApi(
	defs *services.DefinitionService,
	chain *services.EntryChainService,
	history *services.HistoryService,
	status *services.StatusListService,
	endorsement *services.EndorsementService,
	clock services.Clock,
	log logger.Logger,
) *RevocationApi {
	if clock == nil {
		clock = common.NowUnix
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &RevocationApi{
		defs:        defs,
		chain:       chain,
		history:     history,
		status:      status,
		endorsement: endorsement,
		clock:       clock,
		log:         log,
	}
}

// Endorsement exposes the endorsing-data builders for off-ledger authors
func (a *RevocationApi) Endorsement() *services.EndorsementService {
	return a.endorsement
}

// CreateDefinitionOptions configures a direct definition creation
type CreateDefinitionOptions struct {
	Definition *registry.RevocationRegistryDefinition
	// Identity controls the issuer DID
	Identity crypto.Address
	// ActingParty submits the write; defaults to Identity
	ActingParty crypto.Address
}

// CreateDefinition records a new revocation registry definition
func (a *RevocationApi) CreateDefinition(ctx context.Context, opts CreateDefinitionOptions) (*repository.DefinitionRecord, error) {
	req := services.WriteRequest{Identity: opts.Identity, ActingParty: opts.ActingParty}
	if req.ActingParty.IsZero() {
		req = services.DirectRequest(opts.Identity)
	}
	return a.defs.Create(ctx, opts.Definition, req)
}

// CreateDefinitionDelegated records a definition authored by a controlling
// identity and submitted by a distinct endorser. The issuer is attributed to
// the recovered author, never the endorser.
func (a *RevocationApi) CreateDefinitionDelegated(ctx context.Context, def *registry.RevocationRegistryDefinition, req *services.EndorsementRequest) (*repository.DefinitionRecord, error) {
	resolved, err := a.endorsement.VerifyCreateDefinition(req, def)
	if err != nil {
		return nil, errors.Wrap(err, "createDefinitionDelegated")
	}
	return a.defs.Create(ctx, def, resolved)
}

// CreateEntryOptions configures a direct entry creation
type CreateEntryOptions struct {
	Entry       *registry.RevocationRegistryEntry
	Identity    crypto.Address
	ActingParty crypto.Address
	// SkipLedgerValidation disables the previous-accumulator check against the
	// current status list, for backends that already enforce it on chain.
	SkipLedgerValidation bool
}

// CreateEntry appends a revocation registry entry to its definition's chain
func (a *RevocationApi) CreateEntry(ctx context.Context, opts CreateEntryOptions) (eventlog.Position, error) {
	req := services.WriteRequest{Identity: opts.Identity, ActingParty: opts.ActingParty}
	if req.ActingParty.IsZero() {
		req = services.DirectRequest(opts.Identity)
	}
	if !opts.SkipLedgerValidation {
		if err := a.validateAgainstLedger(ctx, opts.Entry); err != nil {
			return 0, err
		}
	}
	return a.chain.Append(ctx, opts.Entry, req)
}

// CreateEntryDelegated appends an entry authored by a controlling identity and
// submitted by a distinct endorser.
func (a *RevocationApi) CreateEntryDelegated(ctx context.Context, entry *registry.RevocationRegistryEntry, req *services.EndorsementRequest) (eventlog.Position, error) {
	resolved, err := a.endorsement.VerifyCreateEntry(req, entry)
	if err != nil {
		return 0, errors.Wrap(err, "createEntryDelegated")
	}
	if err := a.validateAgainstLedger(ctx, entry); err != nil {
		return 0, err
	}
	return a.chain.Append(ctx, entry, resolved)
}

// validateAgainstLedger checks the entry's previous accumulator against the
// definition's current status list before submission.
func (a *RevocationApi) validateAgainstLedger(ctx context.Context, entry *registry.RevocationRegistryEntry) error {
	statusList, err := a.status.ResolveAt(ctx, entry.RevRegDefId, a.clock())
	if err != nil {
		return errors.Wrap(err, "createEntry: resolving current status list")
	}
	if err := entry.ValidateWithStatusList(statusList); err != nil {
		return errors.Wrapf(err, "createEntry %s", entry.RevRegDefId)
	}
	return nil
}

// ResolveDefinition returns the stored definition record for an id
func (a *RevocationApi) ResolveDefinition(ctx context.Context, definitionId string) (*repository.DefinitionRecord, error) {
	return a.defs.Resolve(ctx, definitionId)
}

// ResolveDefinitionsByIssuer returns all definition records of an issuer
func (a *RevocationApi) ResolveDefinitionsByIssuer(ctx context.Context, issuerId string) ([]*repository.DefinitionRecord, error) {
	return a.defs.ResolveByIssuer(ctx, issuerId)
}

// ReconstructHistory returns every entry ever written for a definition,
// oldest first.
func (a *RevocationApi) ReconstructHistory(ctx context.Context, definitionId string) ([]services.ChainEntry, error) {
	return a.history.Reconstruct(ctx, definitionId)
}

// ResolveStatusListAt returns the revocation state of a definition as of a
// Unix timestamp.
func (a *RevocationApi) ResolveStatusListAt(ctx context.Context, definitionId string, timestamp int64) (*registry.RevocationStatusList, error) {
	return a.status.ResolveAt(ctx, definitionId, timestamp)
}
