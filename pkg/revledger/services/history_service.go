package services

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/ajna-inc/kanon-ledger/pkg/core/logger"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// ChainEntry is one recovered link of a definition's entry chain
type ChainEntry struct {
	Position             eventlog.Position                `json:"position"`
	PreviousEntryPointer eventlog.Position                `json:"previousEntryPointer"`
	CreatedAt            int64                            `json:"createdAt"`
	Entry                registry.RevocationRegistryEntry `json:"entry"`
}

// HistoryService reconstructs the full ordered entry chain of a definition by
// walking the backward-linked notification trail from the tail pointer.
// Reconstruction is read-only and idempotent; callers may abandon or retry it
// freely, and concurrent reconstructions are safe because the chain is
// immutable once written.
type HistoryService struct {
	defs     *DefinitionService
	eventLog eventlog.Log
	log      logger.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(defs *DefinitionService, log eventlog.Log, lg logger.Logger) *HistoryService {
	if lg == nil {
		lg = logger.GetDefaultLogger()
	}
	return &HistoryService{defs: defs, eventLog: log, log: lg}
}

// Reconstruct returns every entry ever written for a definition, oldest
// first. An empty chain is not an error. Any fetch failure aborts the whole
// walk with HistorySourceUnavailable — never a silently truncated history.
func (s *HistoryService) Reconstruct(ctx context.Context, definitionId string) ([]ChainEntry, error) {
	key := registry.KeyForId(definitionId)
	if _, err := s.defs.ResolveByKey(ctx, key, definitionId); err != nil {
		return nil, errors.Wrap(err, "reconstructHistory")
	}

	tail := s.defs.tails.Get(key)
	if tail.IsZero() {
		return nil, nil
	}

	// Iterative worklist rather than recursion: chains can be long, and a
	// position may fan out into several notifications recorded in the same
	// block, each followed independently.
	worklist := []eventlog.Position{tail}
	visited := make(map[eventlog.Position]struct{})
	var discovered []ChainEntry

	for len(worklist) > 0 {
		pos := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if _, seen := visited[pos]; seen {
			continue
		}
		visited[pos] = struct{}{}

		notifications, err := s.eventLog.Range(ctx, key, pos, pos)
		if err != nil {
			return nil, errors.Wrapf(registry.ErrHistorySourceUnavailable,
				"reconstructHistory %s: fetching position %d: %v", definitionId, pos, err)
		}
		if len(notifications) == 0 {
			return nil, errors.Wrapf(registry.ErrHistorySourceUnavailable,
				"reconstructHistory %s: no notification at referenced position %d", definitionId, pos)
		}

		for _, n := range notifications {
			discovered = append(discovered, ChainEntry{
				Position:             pos,
				PreviousEntryPointer: n.PreviousEntryPointer,
				CreatedAt:            n.CreatedAt,
				Entry:                n.Entry,
			})
			if !n.PreviousEntryPointer.IsZero() {
				worklist = append(worklist, n.PreviousEntryPointer)
			}
		}
	}

	// Discovery runs newest-to-oldest; the public contract is chronological.
	// Stable sort keeps intra-position emission order intact.
	sort.SliceStable(discovered, func(i, j int) bool {
		return discovered[i].Position < discovered[j].Position
	})

	s.log.Tracef("reconstructed %d entries for %s", len(discovered), definitionId)
	return discovered, nil
}
