package revledger

import (
	"github.com/pkg/errors"

	contextpkg "github.com/ajna-inc/kanon-ledger/pkg/core/context"
	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/core/di"
	"github.com/ajna-inc/kanon-ledger/pkg/core/events"
	"github.com/ajna-inc/kanon-ledger/pkg/core/logger"
	"github.com/ajna-inc/kanon-ledger/pkg/core/storage"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog"
	eventloginmemory "github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog/inmemory"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
	registryinmemory "github.com/ajna-inc/kanon-ledger/pkg/revledger/registry/inmemory"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/repository"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/services"
)

// RevocationModuleConfig configures the revocation ledger module. Every
// collaborator is optional; in-memory implementations are installed for the
// ones left nil, which keeps tests and local development free of wiring.
type RevocationModuleConfig struct {
	// RegistryAddress identifies the target registry; it is bound into every
	// endorsing payload so signatures cannot be replayed against another
	// registry. Overrides LedgerConfig.RegistryAddress when set.
	RegistryAddress crypto.Address

	// EndorsementDomain overrides the default domain prefix of the canonical
	// endorsing payload encoding.
	EndorsementDomain string

	// EventLog is the ordered notification transport backing entry chains
	EventLog eventlog.Log

	// External collaborators
	CredentialDefinitions registry.CredentialDefinitionResolver
	Dids                  registry.DidRegistry
	Roles                 registry.RoleRegistry

	// Storage backs definition records
	Storage storage.StorageService

	// Clock supplies entry and record timestamps; defaults to wall time
	Clock services.Clock
}

// RevocationModule wires the revocation ledger engine into the DI container
type RevocationModule struct {
	Config *RevocationModuleConfig
}

// NewRevocationModule creates the revocation ledger module
func NewRevocationModule(config *RevocationModuleConfig) *RevocationModule {
	if config == nil {
		config = &RevocationModuleConfig{}
	}
	return &RevocationModule{Config: config}
}

// Register registers the engine's services as lazy singletons
func (m *RevocationModule) Register(dm di.DependencyManager) error {
	config := m.Config

	if config.EventLog != nil {
		dm.RegisterInstance(di.TokenEventLog, config.EventLog)
	} else if !dm.IsRegistered(di.TokenEventLog) {
		dm.RegisterInstance(di.TokenEventLog, eventloginmemory.NewMemoryLog())
	}

	if config.CredentialDefinitions != nil {
		dm.RegisterInstance(di.TokenCredentialDefinitionResolver, config.CredentialDefinitions)
	} else if !dm.IsRegistered(di.TokenCredentialDefinitionResolver) {
		dm.RegisterInstance(di.TokenCredentialDefinitionResolver, registryinmemory.NewMemoryCredentialDefinitions())
	}

	if config.Dids != nil {
		dm.RegisterInstance(di.TokenDidRegistry, config.Dids)
	} else if !dm.IsRegistered(di.TokenDidRegistry) {
		dm.RegisterInstance(di.TokenDidRegistry, registryinmemory.NewMemoryDidRegistry())
	}

	if config.Roles != nil {
		dm.RegisterInstance(di.TokenRoleRegistry, config.Roles)
	} else if !dm.IsRegistered(di.TokenRoleRegistry) {
		dm.RegisterInstance(di.TokenRoleRegistry, registryinmemory.NewMemoryRoleRegistry())
	}

	if config.Storage != nil {
		dm.RegisterInstance(di.TokenStorageService, config.Storage)
	} else if !dm.IsRegistered(di.TokenStorageService) {
		dm.RegisterInstance(di.TokenStorageService, storage.NewMemoryStorageService())
	}

	if !dm.IsRegistered(di.TokenEventBus) {
		dm.RegisterInstance(di.TokenEventBus, events.NewSimpleBus())
	}

	// Shared tail index, created once and handed to both the definition and
	// entry chain services
	tails := services.NewTailIndex()

	dm.RegisterSingleton(di.TokenDefinitionRepository, func(dm di.DependencyManager) (any, error) {
		storageService, err := di.ResolveTyped[storage.StorageService](dm, di.TokenStorageService)
		if err != nil {
			return nil, err
		}
		return repository.NewDefinitionRepository(storageService), nil
	})

	dm.RegisterSingleton(di.TokenIdentityAuthorizer, func(dm di.DependencyManager) (any, error) {
		roles, err := di.ResolveTyped[registry.RoleRegistry](dm, di.TokenRoleRegistry)
		if err != nil {
			return nil, err
		}
		dids, err := di.ResolveTyped[registry.DidRegistry](dm, di.TokenDidRegistry)
		if err != nil {
			return nil, err
		}
		return services.NewIdentityAuthorizer(roles, dids, m.resolveLogger(dm)), nil
	})

	dm.RegisterSingleton(di.TokenEndorsementService, func(dm di.DependencyManager) (any, error) {
		address, domain, err := m.endorsementParams(dm)
		if err != nil {
			return nil, err
		}
		return services.NewEndorsementService(address, domain, m.resolveLogger(dm)), nil
	})

	dm.RegisterSingleton(di.TokenDefinitionService, func(dm di.DependencyManager) (any, error) {
		repo, err := di.ResolveTyped[*repository.DefinitionRepository](dm, di.TokenDefinitionRepository)
		if err != nil {
			return nil, err
		}
		credDefs, err := di.ResolveTyped[registry.CredentialDefinitionResolver](dm, di.TokenCredentialDefinitionResolver)
		if err != nil {
			return nil, err
		}
		authorizer, err := di.ResolveTyped[*services.IdentityAuthorizer](dm, di.TokenIdentityAuthorizer)
		if err != nil {
			return nil, err
		}
		bus, err := di.ResolveTyped[events.Bus](dm, di.TokenEventBus)
		if err != nil {
			return nil, err
		}
		return services.NewDefinitionService(repo, credDefs, authorizer, tails, bus, config.Clock, m.resolveLogger(dm)), nil
	})

	dm.RegisterSingleton(di.TokenEntryChainService, func(dm di.DependencyManager) (any, error) {
		defs, err := di.ResolveTyped[*services.DefinitionService](dm, di.TokenDefinitionService)
		if err != nil {
			return nil, err
		}
		authorizer, err := di.ResolveTyped[*services.IdentityAuthorizer](dm, di.TokenIdentityAuthorizer)
		if err != nil {
			return nil, err
		}
		log, err := di.ResolveTyped[eventlog.Log](dm, di.TokenEventLog)
		if err != nil {
			return nil, err
		}
		bus, err := di.ResolveTyped[events.Bus](dm, di.TokenEventBus)
		if err != nil {
			return nil, err
		}
		return services.NewEntryChainService(defs, authorizer, log, tails, bus, config.Clock, m.resolveLogger(dm)), nil
	})

	dm.RegisterSingleton(di.TokenHistoryService, func(dm di.DependencyManager) (any, error) {
		defs, err := di.ResolveTyped[*services.DefinitionService](dm, di.TokenDefinitionService)
		if err != nil {
			return nil, err
		}
		log, err := di.ResolveTyped[eventlog.Log](dm, di.TokenEventLog)
		if err != nil {
			return nil, err
		}
		return services.NewHistoryService(defs, log, m.resolveLogger(dm)), nil
	})

	dm.RegisterSingleton(di.TokenStatusListService, func(dm di.DependencyManager) (any, error) {
		defs, err := di.ResolveTyped[*services.DefinitionService](dm, di.TokenDefinitionService)
		if err != nil {
			return nil, err
		}
		history, err := di.ResolveTyped[*services.HistoryService](dm, di.TokenHistoryService)
		if err != nil {
			return nil, err
		}
		return services.NewStatusListService(defs, history, m.resolveLogger(dm)), nil
	})

	dm.RegisterSingleton(di.TokenRevocationApi, func(dm di.DependencyManager) (any, error) {
		defs, err := di.ResolveTyped[*services.DefinitionService](dm, di.TokenDefinitionService)
		if err != nil {
			return nil, err
		}
		chain, err := di.ResolveTyped[*services.EntryChainService](dm, di.TokenEntryChainService)
		if err != nil {
			return nil, err
		}
		history, err := di.ResolveTyped[*services.HistoryService](dm, di.TokenHistoryService)
		if err != nil {
			return nil, err
		}
		status, err := di.ResolveTyped[*services.StatusListService](dm, di.TokenStatusListService)
		if err != nil {
			return nil, err
		}
		endorsement, err := di.ResolveTyped[*services.EndorsementService](dm, di.TokenEndorsementService)
		if err != nil {
			return nil, err
		}
		return NewRevocationApi(defs, chain, history, status, endorsement, config.Clock, m.resolveLogger(dm)), nil
	})

	return nil
}

// OnInitializeContext eagerly builds the API so wiring errors surface at
// startup rather than on first use.
func (m *RevocationModule) OnInitializeContext(ctx *contextpkg.LedgerContext) error {
	dm, ok := ctx.DependencyManager.(di.DependencyManager)
	if !ok {
		return errors.New("revocation module: context has no dependency manager")
	}
	if _, err := dm.Resolve(di.TokenRevocationApi); err != nil {
		return errors.Wrap(err, "revocation module: initializing api")
	}
	return nil
}

// OnShutdown releases module resources. The engine holds no connections of
// its own; collaborator lifecycles belong to their providers.
func (m *RevocationModule) OnShutdown(ctx *contextpkg.LedgerContext) error {
	return nil
}

// endorsementParams resolves the registry address and domain, preferring the
// module config over the ledger config.
func (m *RevocationModule) endorsementParams(dm di.DependencyManager) (crypto.Address, string, error) {
	address := m.Config.RegistryAddress
	domain := m.Config.EndorsementDomain

	ledgerConfig, err := di.ResolveTyped[*contextpkg.LedgerConfig](dm, di.TokenLedgerConfig)
	if err == nil && ledgerConfig != nil {
		if address.IsZero() && ledgerConfig.RegistryAddress != "" {
			parsed, err := crypto.ParseAddress(ledgerConfig.RegistryAddress)
			if err != nil {
				return crypto.Address{}, "", errors.Wrap(err, "revocation module: registry address")
			}
			address = parsed
		}
		if domain == "" {
			domain = ledgerConfig.EndorsementDomain
		}
	}

	return address, domain, nil
}

func (m *RevocationModule) resolveLogger(dm di.DependencyManager) logger.Logger {
	log, err := di.ResolveTyped[logger.Logger](dm, di.TokenLogger)
	if err != nil {
		return logger.GetDefaultLogger()
	}
	return log
}

// ResolveApi returns the module's RevocationApi from an initialized container
func ResolveApi(dm di.DependencyManager) (*RevocationApi, error) {
	return di.ResolveTyped[*RevocationApi](dm, di.TokenRevocationApi)
}
