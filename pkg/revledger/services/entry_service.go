package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ajna-inc/kanon-ledger/pkg/core/common"
	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/core/events"
	"github.com/ajna-inc/kanon-ledger/pkg/core/logger"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// EntryCreatedEvent is published on events.EventEntryCreated
type EntryCreatedEvent struct {
	DefinitionId         string
	Key                  registry.DefinitionKey
	Position             eventlog.Position
	PreviousEntryPointer eventlog.Position
	CreatedAt            int64
	Identity             crypto.Address
}

// EntryChainService appends entries to the per-definition backward-linked
// chain. Only the tail pointer is kept in random-access state; full history
// lives in the event log and is recovered by backward traversal. Writes are
// serialized by the external ledger's total order — the engine consumes an
// already-ordered stream and never locks across the log suspension point.
type EntryChainService struct {
	defs       *DefinitionService
	authorizer *IdentityAuthorizer
	eventLog   eventlog.Log
	tails      *TailIndex
	bus        events.Bus
	clock      Clock
	log        logger.Logger
}

// NewEntryChainService creates a new entry chain service
func NewEntryChainService(
	defs *DefinitionService,
	authorizer *IdentityAuthorizer,
	log eventlog.Log,
	tails *TailIndex,
	bus events.Bus,
	clock Clock,
	lg logger.Logger,
) *EntryChainService {
	if clock == nil {
		clock = common.NowUnix
	}
	if lg == nil {
		lg = logger.GetDefaultLogger()
	}
	return &EntryChainService{
		defs:       defs,
		authorizer: authorizer,
		eventLog:   log,
		tails:      tails,
		bus:        bus,
		clock:      clock,
		log:        lg,
	}
}

// Append records a new entry for an existing definition: it resolves the
// definition (propagating NotFound), authorizes the write for the
// definition's issuer, links the entry to the current tail and advances the
// tail to the appended position.
func (s *EntryChainService) Append(ctx context.Context, entry *registry.RevocationRegistryEntry, req WriteRequest) (eventlog.Position, error) {
	record, err := s.defs.Resolve(ctx, entry.RevRegDefId)
	if err != nil {
		return 0, errors.Wrap(err, "createEntry")
	}

	if err := entry.Validate(); err != nil {
		return 0, errors.Wrapf(err, "createEntry %s", entry.RevRegDefId)
	}
	if entry.IssuerId != record.IssuerId {
		return 0, errors.Wrapf(registry.ErrNotAuthorized,
			"createEntry %s: entry issuer %s does not match definition issuer %s",
			entry.RevRegDefId, entry.IssuerId, record.IssuerId)
	}

	if err := s.authorizer.Authorize(req.ActingParty, req.Identity, record.IssuerId); err != nil {
		return 0, errors.Wrapf(err, "createEntry %s", entry.RevRegDefId)
	}

	key, err := record.DefinitionKey()
	if err != nil {
		return 0, errors.Wrapf(err, "createEntry %s", entry.RevRegDefId)
	}

	notification := eventlog.Notification{
		DefinitionKey:        key,
		CreatedAt:            s.clock(),
		PreviousEntryPointer: s.tails.Get(key),
		Entry:                *entry,
	}

	pos, err := s.eventLog.Append(ctx, notification)
	if err != nil {
		return 0, errors.Wrapf(err, "createEntry %s: appending notification", entry.RevRegDefId)
	}

	s.tails.advance(key, pos)

	if s.bus != nil {
		s.bus.Publish(events.EventEntryCreated, EntryCreatedEvent{
			DefinitionId:         record.DefinitionId,
			Key:                  key,
			Position:             pos,
			PreviousEntryPointer: notification.PreviousEntryPointer,
			CreatedAt:            notification.CreatedAt,
			Identity:             req.Identity,
		})
	}
	s.log.Debugf("appended entry for %s at position %d (prev %d)",
		record.DefinitionId, pos, notification.PreviousEntryPointer)

	return pos, nil
}
