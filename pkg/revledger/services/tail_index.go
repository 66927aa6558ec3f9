package services

import (
	"sync"

	"github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// TailIndex maps each definition to the position of its most recently
// appended entry — the sole persisted history anchor. It is mutated only
// inside definition creation (Init) and entry append (advance); reads never
// block writers beyond these short critical sections.
type TailIndex struct {
	mu    sync.RWMutex
	tails map[registry.DefinitionKey]eventlog.Position
}

// NewTailIndex creates an empty tail index
func NewTailIndex() *TailIndex {
	return &TailIndex{tails: make(map[registry.DefinitionKey]eventlog.Position)}
}

// Init registers a definition with an empty tail pointer
func (t *TailIndex) Init(key registry.DefinitionKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tails[key]; !ok {
		t.tails[key] = 0
	}
}

// Get returns the current tail pointer for a definition (zero if no entries)
func (t *TailIndex) Get(key registry.DefinitionKey) eventlog.Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tails[key]
}

// advance moves the tail pointer to the position of a just-appended entry
func (t *TailIndex) advance(key registry.DefinitionKey, pos eventlog.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tails[key] = pos
}
