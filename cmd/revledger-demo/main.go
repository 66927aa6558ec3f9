package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"

	contextpkg "github.com/ajna-inc/kanon-ledger/pkg/core/context"
	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/core/di"
	"github.com/ajna-inc/kanon-ledger/pkg/core/events"
	"github.com/ajna-inc/kanon-ledger/pkg/core/logger"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
	registryinmemory "github.com/ajna-inc/kanon-ledger/pkg/revledger/registry/inmemory"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/services"
)

const (
	issuerDid = "did:indy2:testnet:SEp33q43PsdP7nDATyySSH"
	credDefId = issuerDid + "/anoncreds/v0/CLAIM_DEF/56495/mctc"
)

var logLevel = flag.String("log-level", "info", "Log level: off, error, warn, info, debug, trace")

func main() {
	flag.Parse()
	logger.SetDefaultLogger(logger.NewDefaultLogger(logger.ParseLogLevel(*logLevel)))

	if err := run(); err != nil {
		log.Fatalf("demo failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	trusteeKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	issuerKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	endorserKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	trustee := crypto.AddressFromPrivateKey(trusteeKey)
	issuer := crypto.AddressFromPrivateKey(issuerKey)
	endorser := crypto.AddressFromPrivateKey(endorserKey)

	credDefs := registryinmemory.NewMemoryCredentialDefinitions()
	credDefs.Put(registry.CredentialDefinition{Id: credDefId, IssuerId: issuerDid, Tag: "mctc"})

	dids := registryinmemory.NewMemoryDidRegistry()
	dids.PutController(issuerDid, issuer)

	roles := registryinmemory.NewMemoryRoleRegistry()
	roles.PutRole(trustee, registry.RoleTrustee)
	roles.PutRole(issuer, registry.RoleEndorser)
	roles.PutRole(endorser, registry.RoleEndorser)

	registryAddress, err := crypto.ParseAddress("0x0000000000000000000000000000000000006001")
	if err != nil {
		return err
	}

	dm := di.NewDependencyManager()
	module := revledger.NewRevocationModule(&revledger.RevocationModuleConfig{
		RegistryAddress:       registryAddress,
		CredentialDefinitions: credDefs,
		Dids:                  dids,
		Roles:                 roles,
	})
	if err := dm.RegisterModules([]di.Module{module}); err != nil {
		return err
	}
	ledgerCtx := contextpkg.NewLedgerContext(contextpkg.LedgerContextOptions{
		Context:             ctx,
		IsRootLedgerContext: true,
		DependencyManager:   dm,
		Config:              &contextpkg.LedgerConfig{Label: "revledger-demo"},
	})
	if err := dm.InitializeModules(ledgerCtx); err != nil {
		return err
	}
	defer func() {
		if err := dm.ShutdownModules(ledgerCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	api, err := revledger.ResolveApi(dm)
	if err != nil {
		return err
	}

	bus, err := di.ResolveTyped[events.Bus](dm, di.TokenEventBus)
	if err != nil {
		return err
	}
	unsubscribe := bus.Subscribe(events.EventEntryCreated, func(ev events.Event) {
		if data, ok := ev.Data.(services.EntryCreatedEvent); ok {
			log.Printf("event: entry at position %d (prev %d) for %s",
				data.Position, data.PreviousEntryPointer, data.DefinitionId)
		}
	})
	defer unsubscribe()

	def := &registry.RevocationRegistryDefinition{
		IssuerId:     issuerDid,
		RevocDefType: "CL_ACCUM",
		CredDefId:    credDefId,
		Tag:          "default",
		Value:        json.RawMessage(`{"maxCredNum":100,"tailsLocation":"https://tails.example/hash"}`),
	}

	// Delegated creation: the issuer signs endorsing data off-ledger, the
	// endorser wraps and submits it.
	endorsingData, err := api.Endorsement().BuildCreateDefinitionEndorsingData(issuer, def)
	if err != nil {
		return err
	}
	if err := endorsingData.Sign(issuerKey); err != nil {
		return err
	}
	endorsementReq, err := api.Endorsement().Endorse(endorsingData, endorserKey)
	if err != nil {
		return err
	}
	record, err := api.CreateDefinitionDelegated(ctx, def, endorsementReq)
	if err != nil {
		return err
	}
	log.Printf("created definition %s (key %s)", record.DefinitionId, record.Key)

	// Two direct entries submitted by the issuer itself
	entry1 := &registry.RevocationRegistryEntry{
		RevRegDefId: def.Id(),
		IssuerId:    issuerDid,
		Data: registry.RevocationRegistryEntryData{
			CurrentAccumulator: "0x20",
			Revoked:            []uint32{2, 3},
		},
	}
	if _, err := api.CreateEntry(ctx, revledger.CreateEntryOptions{Entry: entry1, Identity: issuer}); err != nil {
		return err
	}

	list1, err := api.ResolveStatusListAt(ctx, def.Id(), entryTimestamp(ctx, api, def.Id(), 1))
	if err != nil {
		return err
	}
	log.Printf("status after first entry: revoked=%v accumulator=%s", list1.Revoked, list1.CurrentAccumulator)

	entry2 := &registry.RevocationRegistryEntry{
		RevRegDefId: def.Id(),
		IssuerId:    issuerDid,
		Data: registry.RevocationRegistryEntryData{
			CurrentAccumulator: "0x30",
			PrevAccumulator:    "0x20",
			Issued:             []uint32{2},
			Revoked:            []uint32{11, 12, 13},
		},
	}
	if _, err := api.CreateEntry(ctx, revledger.CreateEntryOptions{Entry: entry2, Identity: issuer}); err != nil {
		return err
	}

	list2, err := api.ResolveStatusListAt(ctx, def.Id(), entryTimestamp(ctx, api, def.Id(), 2))
	if err != nil {
		return err
	}
	log.Printf("status after second entry: revoked=%v accumulator=%s", list2.Revoked, list2.CurrentAccumulator)

	chain, err := api.ReconstructHistory(ctx, def.Id())
	if err != nil {
		return err
	}
	for _, link := range chain {
		log.Printf("chain: position=%d prev=%d createdAt=%d accumulator=%s",
			link.Position, link.PreviousEntryPointer, link.CreatedAt, link.Entry.Data.CurrentAccumulator)
	}

	return nil
}

// entryTimestamp returns the createdAt of the nth entry (1-based) of a
// definition's chain.
func entryTimestamp(ctx context.Context, api *revledger.RevocationApi, definitionId string, n int) int64 {
	chain, err := api.ReconstructHistory(ctx, definitionId)
	if err != nil || len(chain) < n {
		return 0
	}
	return chain[n-1].CreatedAt
}
