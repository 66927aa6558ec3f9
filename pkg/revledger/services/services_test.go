package services

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcec"

	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/core/events"
	"github.com/ajna-inc/kanon-ledger/pkg/core/storage"
	eventloginmemory "github.com/ajna-inc/kanon-ledger/pkg/revledger/eventlog/inmemory"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
	registryinmemory "github.com/ajna-inc/kanon-ledger/pkg/revledger/registry/inmemory"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/repository"
)

const (
	testIssuerDid  = "did:indy2:testnet:SEp33q43PsdP7nDATyySSH"
	testCredDefId  = testIssuerDid + "/anoncreds/v0/CLAIM_DEF/56495/mctc"
	testOtherDid   = "did:indy2:testnet:Zv7sP41bMcU5jDATy2SSH3"
	testRegistryAd = "0x0000000000000000000000000000000000006001"
)

// manualClock is a deterministic Clock advancing by one second per call
type manualClock struct {
	mu  sync.Mutex
	now int64
}

func newManualClock(start int64) *manualClock {
	return &manualClock{now: start}
}

func (c *manualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now++
	return c.now
}

// Set pins the next returned timestamp to value+1
func (c *manualClock) Set(value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = value
}

type testEngine struct {
	credDefs    *registryinmemory.MemoryCredentialDefinitions
	dids        *registryinmemory.MemoryDidRegistry
	roles       *registryinmemory.MemoryRoleRegistry
	eventLog    *eventloginmemory.MemoryLog
	bus         *events.SimpleBus
	clock       *manualClock
	tails       *TailIndex
	repo        *repository.DefinitionRepository
	authorizer  *IdentityAuthorizer
	endorsement *EndorsementService
	defs        *DefinitionService
	chain       *EntryChainService
	history     *HistoryService
	status      *StatusListService

	issuerKey   *btcec.PrivateKey
	endorserKey *btcec.PrivateKey
	issuer      crypto.Address
	endorser    crypto.Address
	stranger    crypto.Address
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	issuerKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generating issuer key: %v", err)
	}
	endorserKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generating endorser key: %v", err)
	}
	strangerKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generating stranger key: %v", err)
	}

	e := &testEngine{
		credDefs:    registryinmemory.NewMemoryCredentialDefinitions(),
		dids:        registryinmemory.NewMemoryDidRegistry(),
		roles:       registryinmemory.NewMemoryRoleRegistry(),
		eventLog:    eventloginmemory.NewMemoryLog(),
		bus:         events.NewSimpleBus(),
		clock:       newManualClock(1000),
		tails:       NewTailIndex(),
		issuerKey:   issuerKey,
		endorserKey: endorserKey,
		issuer:      crypto.AddressFromPrivateKey(issuerKey),
		endorser:    crypto.AddressFromPrivateKey(endorserKey),
		stranger:    crypto.AddressFromPrivateKey(strangerKey),
	}

	e.credDefs.Put(registry.CredentialDefinition{Id: testCredDefId, IssuerId: testIssuerDid, Tag: "mctc"})
	e.dids.PutController(testIssuerDid, e.issuer)
	e.roles.PutRole(e.issuer, registry.RoleEndorser)
	e.roles.PutRole(e.endorser, registry.RoleEndorser)

	registryAddress, err := crypto.ParseAddress(testRegistryAd)
	if err != nil {
		t.Fatalf("parsing registry address: %v", err)
	}

	e.repo = repository.NewDefinitionRepository(storage.NewMemoryStorageService())
	e.authorizer = NewIdentityAuthorizer(e.roles, e.dids, nil)
	e.endorsement = NewEndorsementService(registryAddress, "", nil)
	e.defs = NewDefinitionService(e.repo, e.credDefs, e.authorizer, e.tails, e.bus, e.clock.Now, nil)
	e.chain = NewEntryChainService(e.defs, e.authorizer, e.eventLog, e.tails, e.bus, e.clock.Now, nil)
	e.history = NewHistoryService(e.defs, e.eventLog, nil)
	e.status = NewStatusListService(e.defs, e.history, nil)

	return e
}

func testDefinition() *registry.RevocationRegistryDefinition {
	return &registry.RevocationRegistryDefinition{
		IssuerId:     testIssuerDid,
		RevocDefType: "CL_ACCUM",
		CredDefId:    testCredDefId,
		Tag:          "default",
		Value:        json.RawMessage(`{"maxCredNum":100}`),
	}
}

func testEntry(definitionId string, accumulator string, prev string, issued []uint32, revoked []uint32) *registry.RevocationRegistryEntry {
	return &registry.RevocationRegistryEntry{
		RevRegDefId: definitionId,
		IssuerId:    testIssuerDid,
		Data: registry.RevocationRegistryEntryData{
			CurrentAccumulator: accumulator,
			PrevAccumulator:    prev,
			Issued:             issued,
			Revoked:            revoked,
		},
	}
}

func (e *testEngine) issuerRequest() WriteRequest {
	return WriteRequest{Identity: e.issuer, ActingParty: e.issuer}
}
