package di

import (
	contextpkg "github.com/ajna-inc/kanon-ledger/pkg/core/context"
)

// Module represents a pluggable module with DI registration and lifecycle hooks
type Module interface {
	// Register is called once when the module is added to the container.
	// It should register configs, interfaces, factories and singletons.
	Register(dm DependencyManager) error

	// OnInitializeContext is called when the root LedgerContext is initialized.
	// It may open connections (e.g., storage, log transport) and register
	// context-bound instances.
	OnInitializeContext(ctx *contextpkg.LedgerContext) error

	// OnShutdown is called during shutdown to cleanup resources.
	OnShutdown(ctx *contextpkg.LedgerContext) error
}

// DependencyManager defines the DI API surfaced to modules
type DependencyManager interface {
	// Registration methods
	RegisterInstance(token Token, instance any)
	RegisterSingleton(token Token, factory func(DependencyManager) (any, error))
	RegisterFactory(token Token, factory func(DependencyManager) (any, error))

	// Resolution methods
	Resolve(token Token) (any, error)
	IsRegistered(token Token) bool

	// Context management
	SetContext(ctx *contextpkg.LedgerContext)
	GetContext() *contextpkg.LedgerContext

	// Module lifecycle
	RegisterModules(modules []Module) error
	InitializeModules(ctx *contextpkg.LedgerContext) error
	ShutdownModules(ctx *contextpkg.LedgerContext) error
}
