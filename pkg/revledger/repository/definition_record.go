package repository

import (
	"encoding/json"

	"github.com/ajna-inc/kanon-ledger/pkg/core/storage"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// DefinitionRecordType is the storage record class of definition records
const DefinitionRecordType = "RevocationRegistryDefinitionRecord"

// DefinitionRecord is the stored revocation registry definition plus its
// creation metadata. Records are immutable after creation: Created is set
// exactly once and its non-zero value is the existence invariant.
type DefinitionRecord struct {
	*storage.BaseRecord

	// DefinitionId is the human-readable definition id
	DefinitionId string `json:"definitionId"`
	// Key is the content-derived 32-byte key, hex-rendered; also the record id
	Key                    string `json:"key"`
	CredentialDefinitionId string `json:"credentialDefinitionId"`
	IssuerId               string `json:"issuerId"`
	// Definition is stored and returned verbatim
	Definition registry.RevocationRegistryDefinition `json:"definition"`
	// Created is the ledger time of creation in Unix seconds; never changes
	Created int64 `json:"created"`
}

// NewDefinitionRecord creates a new definition record with Created set to the
// given ledger time.
func NewDefinitionRecord(definition registry.RevocationRegistryDefinition, created int64) *DefinitionRecord {
	key := definition.Key()

	record := &DefinitionRecord{
		BaseRecord:             storage.NewBaseRecord(DefinitionRecordType),
		DefinitionId:           definition.Id(),
		Key:                    key.String(),
		CredentialDefinitionId: definition.CredDefId,
		IssuerId:               definition.IssuerId,
		Definition:             definition,
		Created:                created,
	}
	// Record id is the definition key so lookups need no tag scan
	record.SetId(key.String())

	// Tags for querying
	record.SetTag("definitionId", record.DefinitionId)
	record.SetTag("credentialDefinitionId", definition.CredDefId)
	record.SetTag("issuerId", definition.IssuerId)

	return record
}

// DefinitionKey returns the parsed definition key
func (r *DefinitionRecord) DefinitionKey() (registry.DefinitionKey, error) {
	return registry.ParseDefinitionKey(r.Key)
}

// ToJSON serializes the record to JSON
func (r *DefinitionRecord) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON deserializes the record from JSON
func (r *DefinitionRecord) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
