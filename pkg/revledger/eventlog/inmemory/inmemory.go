// Package inmemory provides an in-memory event log simulating a block-ordered
// transport, intended for development and testing.
package inmemory

import (
	"context"
	"sync"

	"github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// MemoryLog is an in-memory implementation of eventlog.Log. Each Append lands
// in a fresh block by default; BeginBlock/EndBlock group appends into a single
// block to simulate several entries recorded in the same unit of the log.
type MemoryLog struct {
	mu     sync.RWMutex
	height eventlog.Position
	byKey  map[registry.DefinitionKey]map[eventlog.Position][]eventlog.Notification
	// when true, appends share the current block instead of opening a new one
	holdBlock bool
}

// NewMemoryLog creates a new in-memory event log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		byKey: make(map[registry.DefinitionKey]map[eventlog.Position][]eventlog.Notification),
	}
}

// BeginBlock makes subsequent appends share one simulated block until EndBlock
func (l *MemoryLog) BeginBlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.height++
	l.holdBlock = true
}

// EndBlock closes a block opened with BeginBlock
func (l *MemoryLog) EndBlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.holdBlock = false
}

// Height returns the current block height
func (l *MemoryLog) Height() eventlog.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.height
}

func (l *MemoryLog) Append(ctx context.Context, n eventlog.Notification) (eventlog.Position, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.holdBlock {
		l.height++
	}
	pos := l.height

	byPos, ok := l.byKey[n.DefinitionKey]
	if !ok {
		byPos = make(map[eventlog.Position][]eventlog.Notification)
		l.byKey[n.DefinitionKey] = byPos
	}
	byPos[pos] = append(byPos[pos], n)

	return pos, nil
}

func (l *MemoryLog) Range(ctx context.Context, key registry.DefinitionKey, from eventlog.Position, to eventlog.Position) ([]eventlog.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	byPos, ok := l.byKey[key]
	if !ok {
		return nil, nil
	}

	var out []eventlog.Notification
	for pos := from; pos <= to; pos++ {
		out = append(out, byPos[pos]...)
	}
	return out, nil
}
