package di

import (
	"errors"
	"fmt"
)

var ErrDependencyNotFound = errors.New("dependency not found")

// Token is an identifier for dependencies
type Token struct {
	Name string
}

// Common tokens used across the ledger engine
var (
	TokenLogger         = Token{Name: "Logger"}
	TokenEventBus       = Token{Name: "EventBus"}
	TokenStorageService = Token{Name: "StorageService"}
	TokenLedgerConfig   = Token{Name: "LedgerConfig"}
	TokenLedgerContext  = Token{Name: "LedgerContext"}

	// External collaborators
	TokenEventLog                     = Token{Name: "EventLog"}
	TokenCredentialDefinitionResolver = Token{Name: "CredentialDefinitionResolver"}
	TokenDidRegistry                  = Token{Name: "DidRegistry"}
	TokenRoleRegistry                 = Token{Name: "RoleRegistry"}

	// Revocation ledger typed services
	TokenIdentityAuthorizer   = Token{Name: "RevLedger.IdentityAuthorizer"}
	TokenEndorsementService   = Token{Name: "RevLedger.EndorsementService"}
	TokenDefinitionService    = Token{Name: "RevLedger.DefinitionService"}
	TokenDefinitionRepository = Token{Name: "RevLedger.DefinitionRepository"}
	TokenEntryChainService    = Token{Name: "RevLedger.EntryChainService"}
	TokenHistoryService       = Token{Name: "RevLedger.HistoryService"}
	TokenStatusListService    = Token{Name: "RevLedger.StatusListService"}

	// High-level module API
	TokenRevocationApi = Token{Name: "RevocationApi"}
)

// TypedToken is a type-safe token with generic type information
type TypedToken[T any] struct {
	Name string
}

// NewTypedToken creates a new type-safe token
func NewTypedToken[T any](name string) TypedToken[T] {
	return TypedToken[T]{Name: name}
}

// ToToken converts a typed token to a regular token
func (t TypedToken[T]) ToToken() Token {
	return Token{Name: t.Name}
}

// ResolveTyped resolves a dependency and asserts its type
func ResolveTyped[T any](dm DependencyManager, token Token) (T, error) {
	var zero T
	instance, err := dm.Resolve(token)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("dependency '%s' has unexpected type %T", token.Name, instance)
	}
	return typed, nil
}
