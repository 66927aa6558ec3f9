package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajna-inc/kanon-ledger/pkg/core/storage"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// DefinitionRepository stores revocation registry definition records. It
// exclusively owns definition records; nothing mutates them outside the
// create path.
type DefinitionRepository struct {
	storage storage.StorageService
}

// NewDefinitionRepository creates a new definition repository
func NewDefinitionRepository(storageService storage.StorageService) *DefinitionRepository {
	return &DefinitionRepository{storage: storageService}
}

// Save stores a new definition record; duplicate keys are rejected
func (r *DefinitionRepository) Save(ctx context.Context, record *DefinitionRecord) error {
	return r.storage.Save(ctx, record)
}

// FindByKey returns the record for a definition key, or nil when absent
func (r *DefinitionRepository) FindByKey(ctx context.Context, key registry.DefinitionKey) (*DefinitionRecord, error) {
	record, err := r.storage.GetById(ctx, DefinitionRecordType, key.String())
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	typed, ok := record.(*DefinitionRecord)
	if !ok {
		return nil, fmt.Errorf("unexpected record type %T for %s", record, key)
	}
	return typed, nil
}

// FindByIssuer returns all definition records of an issuer
func (r *DefinitionRepository) FindByIssuer(ctx context.Context, issuerId string) ([]*DefinitionRecord, error) {
	query := storage.NewQuery().WithTag("issuerId", issuerId)
	records, err := r.storage.FindByQuery(ctx, DefinitionRecordType, *query)
	if err != nil {
		return nil, err
	}
	out := make([]*DefinitionRecord, 0, len(records))
	for _, record := range records {
		typed, ok := record.(*DefinitionRecord)
		if !ok {
			return nil, fmt.Errorf("unexpected record type %T", record)
		}
		out = append(out, typed)
	}
	return out, nil
}
