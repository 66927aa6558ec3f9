// Package inmemory provides in-memory implementations of the external
// collaborator interfaces, intended for development and testing.
package inmemory

import (
	"fmt"
	"sync"

	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// MemoryCredentialDefinitions is an in-memory CredentialDefinitionResolver
type MemoryCredentialDefinitions struct {
	mu          sync.RWMutex
	credDefById map[string]registry.CredentialDefinition
}

// NewMemoryCredentialDefinitions creates a new in-memory credential definition resolver
func NewMemoryCredentialDefinitions() *MemoryCredentialDefinitions {
	return &MemoryCredentialDefinitions{
		credDefById: make(map[string]registry.CredentialDefinition),
	}
}

// Put pre-seeds a credential definition
func (m *MemoryCredentialDefinitions) Put(cd registry.CredentialDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credDefById[cd.Id] = cd
}

func (m *MemoryCredentialDefinitions) ResolveCredentialDefinition(credDefId string) (*registry.CredentialDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cd, ok := m.credDefById[credDefId]
	if !ok {
		return nil, fmt.Errorf("credential definition not found: %s", credDefId)
	}
	return &cd, nil
}

// MemoryDidRegistry is an in-memory DidRegistry mapping issuer DIDs to their
// controlling accounts.
type MemoryDidRegistry struct {
	mu          sync.RWMutex
	controllers map[string]map[crypto.Address]struct{}
}

// NewMemoryDidRegistry creates a new in-memory DID registry
func NewMemoryDidRegistry() *MemoryDidRegistry {
	return &MemoryDidRegistry{
		controllers: make(map[string]map[crypto.Address]struct{}),
	}
}

// PutController records that identity controls issuerId
func (m *MemoryDidRegistry) PutController(issuerId string, identity crypto.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byIssuer, ok := m.controllers[issuerId]
	if !ok {
		byIssuer = make(map[crypto.Address]struct{})
		m.controllers[issuerId] = byIssuer
	}
	byIssuer[identity] = struct{}{}
}

func (m *MemoryDidRegistry) IsControlledBy(issuerId string, identity crypto.Address) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byIssuer, ok := m.controllers[issuerId]
	if !ok {
		return false, nil
	}
	_, controlled := byIssuer[identity]
	return controlled, nil
}

// MemoryRoleRegistry is an in-memory RoleRegistry
type MemoryRoleRegistry struct {
	mu    sync.RWMutex
	roles map[crypto.Address]registry.Role
}

// NewMemoryRoleRegistry creates a new in-memory role registry
func NewMemoryRoleRegistry() *MemoryRoleRegistry {
	return &MemoryRoleRegistry{roles: make(map[crypto.Address]registry.Role)}
}

// PutRole assigns a role to an account
func (m *MemoryRoleRegistry) PutRole(party crypto.Address, role registry.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[party] = role
}

func (m *MemoryRoleRegistry) RoleOf(party crypto.Address) (registry.Role, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[party]
	return role, ok
}
