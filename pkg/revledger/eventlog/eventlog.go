// Package eventlog defines the append-only notification transport the entry
// chain is recorded on. Full entry history is never held in random-access
// storage — only a tail pointer per definition — so the log must preserve the
// exact notification tuple and support retrieval by explicit position range.
package eventlog

import (
	"context"

	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// Position is an event-log coordinate (a block number on chain-backed
// transports). The zero position means "no entry".
type Position uint64

// IsZero reports whether the position is unset
func (p Position) IsZero() bool {
	return p == 0
}

// Notification is one emitted entry-created event. PreviousEntryPointer links
// backward to the position of the preceding entry for the same definition,
// zero for the first entry.
type Notification struct {
	DefinitionKey        registry.DefinitionKey           `json:"definitionKey"`
	CreatedAt            int64                            `json:"createdAt"`
	PreviousEntryPointer Position                         `json:"previousEntryPointer"`
	Entry                registry.RevocationRegistryEntry `json:"entry"`
}

// Log is the append-only, range-queryable notification transport
type Log interface {
	// Append records a notification and returns the position it landed at.
	Append(ctx context.Context, n Notification) (Position, error)

	// Range returns all notifications for a definition in positions
	// [from, to], inclusive. Several notifications may share one position
	// (entries recorded in the same block); intra-position order is emission
	// order.
	Range(ctx context.Context, key registry.DefinitionKey, from Position, to Position) ([]Notification, error)
}
