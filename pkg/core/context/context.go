package context

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// LedgerContext represents the context for ledger-engine operations
type LedgerContext struct {
	// Context for cancellation and timeout
	Context context.Context

	// DependencyManager provides access to the DI container
	DependencyManager interface{}

	// ContextCorrelationId allows correlation across sessions
	ContextCorrelationId string

	// IsRootLedgerContext indicates if this is the root context
	IsRootLedgerContext bool

	// Config provides access to ledger configuration
	Config *LedgerConfig

	mutex sync.RWMutex
}

// LedgerConfig represents the ledger-engine configuration
type LedgerConfig struct {
	Label    string `json:"label"`
	LogLevel string `json:"logLevel,omitempty"`
	// RegistryAddress is the address of the target revocation registry. It is
	// bound into every endorsing payload so signatures cannot be replayed
	// against another registry.
	RegistryAddress string `json:"registryAddress,omitempty"`
	// EndorsementDomain is the fixed domain prefix of the canonical endorsing
	// payload encoding. All verifiers of a deployment must share it.
	EndorsementDomain string                 `json:"endorsementDomain,omitempty"`
	ExtraConfig       map[string]interface{} `json:"extraConfig,omitempty"`
}

// LedgerContextOptions configures a new LedgerContext
type LedgerContextOptions struct {
	Context              context.Context
	Config               *LedgerConfig
	ContextCorrelationId string
	IsRootLedgerContext  bool
	DependencyManager    interface{}
}

// NewLedgerContext creates a new ledger context
func NewLedgerContext(opts LedgerContextOptions) *LedgerContext {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	correlationId := opts.ContextCorrelationId
	if correlationId == "" {
		correlationId = uuid.New().String()
	}

	config := opts.Config
	if config == nil {
		config = &LedgerConfig{Label: "kanon-ledger"}
	}

	return &LedgerContext{
		Context:              ctx,
		DependencyManager:    opts.DependencyManager,
		ContextCorrelationId: correlationId,
		IsRootLedgerContext:  opts.IsRootLedgerContext,
		Config:               config,
	}
}

// GetCorrelationId returns the correlation id for this context
func (c *LedgerContext) GetCorrelationId() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.ContextCorrelationId
}

// WithCorrelationId returns a shallow copy of the context carrying a new correlation id
func (c *LedgerContext) WithCorrelationId(correlationId string) *LedgerContext {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return &LedgerContext{
		Context:              c.Context,
		DependencyManager:    c.DependencyManager,
		ContextCorrelationId: correlationId,
		IsRootLedgerContext:  false,
		Config:               c.Config,
	}
}
