package services

import (
	"context"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"

	"github.com/ajna-inc/kanon-ledger/pkg/core/common"
	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/core/events"
	"github.com/ajna-inc/kanon-ledger/pkg/core/logger"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/repository"
)

// DefaultDefinitionCacheSize bounds the resolved-definition LRU cache
const DefaultDefinitionCacheSize = 256

// DefinitionCreatedEvent is published on events.EventDefinitionCreated
type DefinitionCreatedEvent struct {
	DefinitionId string
	Key          registry.DefinitionKey
	IssuerId     string
	Identity     crypto.Address
}

// DefinitionService owns revocation registry definition records: creation
// (with authorization and credential-definition resolution), lookup, and the
// tail-pointer read used to start chain traversal. Definitions are immutable
// after creation, so resolved records are safe to cache.
type DefinitionService struct {
	repo       *repository.DefinitionRepository
	credDefs   registry.CredentialDefinitionResolver
	authorizer *IdentityAuthorizer
	tails      *TailIndex
	bus        events.Bus
	cache      gcache.Cache
	clock      Clock
	log        logger.Logger
}

// NewDefinitionService creates a new definition service
func NewDefinitionService(
	repo *repository.DefinitionRepository,
	credDefs registry.CredentialDefinitionResolver,
	authorizer *IdentityAuthorizer,
	tails *TailIndex,
	bus events.Bus,
	clock Clock,
	log logger.Logger,
) *DefinitionService {
	if clock == nil {
		clock = common.NowUnix
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &DefinitionService{
		repo:       repo,
		credDefs:   credDefs,
		authorizer: authorizer,
		tails:      tails,
		bus:        bus,
		cache:      gcache.New(DefaultDefinitionCacheSize).LRU().Build(),
		clock:      clock,
		log:        log,
	}
}

// Create stores a new revocation registry definition. It fails with
// AlreadyExists for a duplicate id, NotFound when the referenced credential
// definition cannot be resolved, and NotAuthorized when the write request
// fails the role/ownership checks.
func (s *DefinitionService) Create(ctx context.Context, def *registry.RevocationRegistryDefinition, req WriteRequest) (*repository.DefinitionRecord, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	key := def.Key()
	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "createDefinition %s", def.Id())
	}
	if existing != nil && existing.Created != 0 {
		return nil, errors.Wrapf(registry.ErrAlreadyExists,
			"createDefinition: revocation registry definition %s", def.Id())
	}

	if _, err := s.credDefs.ResolveCredentialDefinition(def.CredDefId); err != nil {
		return nil, errors.Wrapf(registry.ErrNotFound,
			"createDefinition %s: credential definition %s: %v", def.Id(), def.CredDefId, err)
	}

	if err := s.authorizer.Authorize(req.ActingParty, req.Identity, def.IssuerId); err != nil {
		return nil, errors.Wrapf(err, "createDefinition %s", def.Id())
	}

	record := repository.NewDefinitionRecord(*def, s.clock())
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, errors.Wrapf(err, "createDefinition %s", def.Id())
	}

	s.tails.Init(key)

	if s.bus != nil {
		s.bus.Publish(events.EventDefinitionCreated, DefinitionCreatedEvent{
			DefinitionId: record.DefinitionId,
			Key:          key,
			IssuerId:     record.IssuerId,
			Identity:     req.Identity,
		})
	}
	s.log.Infof("created revocation registry definition %s (%s)", record.DefinitionId, key)

	return record, nil
}

// Resolve returns the definition record for a human-readable definition id.
// A record with zero Created does not exist.
func (s *DefinitionService) Resolve(ctx context.Context, definitionId string) (*repository.DefinitionRecord, error) {
	return s.ResolveByKey(ctx, registry.KeyForId(definitionId), definitionId)
}

// ResolveByKey returns the definition record for a definition key. The
// displayId is only used in error messages.
func (s *DefinitionService) ResolveByKey(ctx context.Context, key registry.DefinitionKey, displayId string) (*repository.DefinitionRecord, error) {
	if cached, err := s.cache.Get(key); err == nil {
		if record, ok := cached.(*repository.DefinitionRecord); ok {
			return record, nil
		}
	}

	record, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "resolveDefinition %s", displayId)
	}
	if record == nil || record.Created == 0 {
		return nil, errors.Wrapf(registry.ErrNotFound,
			"resolveDefinition: revocation registry definition %s", displayId)
	}

	// Immutable after creation, so the cache can never go stale
	_ = s.cache.Set(key, record)

	return record, nil
}

// ResolveByIssuer returns all definition records created by an issuer,
// in creation order.
func (s *DefinitionService) ResolveByIssuer(ctx context.Context, issuerId string) ([]*repository.DefinitionRecord, error) {
	records, err := s.repo.FindByIssuer(ctx, issuerId)
	if err != nil {
		return nil, errors.Wrapf(err, "resolveDefinitionsByIssuer %s", issuerId)
	}
	return records, nil
}

// LastEntryPointer returns the current tail pointer of a definition's entry
// chain (zero when no entries yet). Fails with NotFound when the definition
// does not exist.
func (s *DefinitionService) LastEntryPointer(ctx context.Context, definitionId string) (eventlog.Position, error) {
	key := registry.KeyForId(definitionId)
	if _, err := s.ResolveByKey(ctx, key, definitionId); err != nil {
		return 0, err
	}
	return s.tails.Get(key), nil
}
