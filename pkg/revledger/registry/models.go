package registry

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RevocationRegistryDefinition carries the parameters of an anonymous
// credential accumulator for one issuer. Value is opaque to the ledger engine
// (public keys, max credential count, tails file reference) — it is stored and
// returned verbatim, never interpreted.
type RevocationRegistryDefinition struct {
	IssuerId     string          `json:"issuerId"`
	RevocDefType string          `json:"revocDefType"`
	CredDefId    string          `json:"credDefId"`
	Tag          string          `json:"tag"`
	Value        json.RawMessage `json:"value,omitempty"`
}

// Id returns the human-readable definition id
func (d *RevocationRegistryDefinition) Id() string {
	return BuildDefinitionId(d.IssuerId, d.CredDefId, d.Tag)
}

// Key returns the content-derived definition key
func (d *RevocationRegistryDefinition) Key() DefinitionKey {
	return KeyForId(d.Id())
}

// Validate checks the definition references before submission
func (d *RevocationRegistryDefinition) Validate() error {
	if d.IssuerId == "" {
		return fmt.Errorf("invalid revocation registry definition: missing issuerId")
	}
	if d.CredDefId == "" {
		return fmt.Errorf("invalid revocation registry definition: missing credDefId")
	}
	if d.Tag == "" {
		return fmt.Errorf("invalid revocation registry definition: missing tag")
	}
	return nil
}

// RevocationRegistryEntryData is the delta payload of one accumulator update.
// Accumulator values and index lists are opaque to the engine; it only stores
// and replays them in order.
type RevocationRegistryEntryData struct {
	CurrentAccumulator string `json:"currentAccumulator"`
	// PrevAccumulator is the accumulator this entry supersedes; empty only for
	// the first entry of a definition.
	PrevAccumulator string   `json:"prevAccumulator,omitempty"`
	Issued          []uint32 `json:"issued,omitempty"`
	Revoked         []uint32 `json:"revoked,omitempty"`
}

// RevocationRegistryEntry is one update to a revocation registry accumulator
type RevocationRegistryEntry struct {
	RevRegDefId string                      `json:"revRegDefId"`
	IssuerId    string                      `json:"issuerId"`
	Data        RevocationRegistryEntryData `json:"revRegEntryData"`
}

// Validate performs local validation of the entry payload
func (e *RevocationRegistryEntry) Validate() error {
	if e.RevRegDefId == "" {
		return fmt.Errorf("invalid revocation registry entry: missing revRegDefId")
	}
	if e.Data.CurrentAccumulator == "" {
		return fmt.Errorf("invalid revocation registry entry: empty currentAccumulator")
	}
	return nil
}

// ValidateWithLedger checks the entry's previous accumulator against the
// accumulator currently recorded on the ledger. Both must be absent for a
// first entry, or present and equal.
func (e *RevocationRegistryEntry) ValidateWithLedger(ledgerAccumulator string) error {
	local := e.Data.PrevAccumulator
	switch {
	case local != "" && ledgerAccumulator != "":
		if local != ledgerAccumulator {
			return fmt.Errorf("prevAccumulator mismatch: expected %s, found %s", ledgerAccumulator, local)
		}
	case local == "" && ledgerAccumulator != "":
		return fmt.Errorf("prevAccumulator not provided locally, but exists on the ledger")
	case local != "" && ledgerAccumulator == "":
		return fmt.Errorf("prevAccumulator provided locally, but does not exist on the ledger")
	}
	return nil
}

// ValidateWithStatusList validates the entry against the resolved current
// status list of its definition: issuer consistency plus the previous
// accumulator check above.
func (e *RevocationRegistryEntry) ValidateWithStatusList(statusList *RevocationStatusList) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if statusList == nil {
		return e.ValidateWithLedger("")
	}
	if statusList.IssuerId != "" && e.IssuerId != statusList.IssuerId {
		return fmt.Errorf("issuer mismatch: entry issuer %s != status list issuer %s", e.IssuerId, statusList.IssuerId)
	}
	return e.ValidateWithLedger(statusList.CurrentAccumulator)
}

// RevocationStatusList is the resolved revocation state of a definition as of
// a point in time.
type RevocationStatusList struct {
	RevRegDefId string `json:"revRegDefId"`
	IssuerId    string `json:"issuerId"`
	// Timestamp is the createdAt of the last entry the fold applied; zero when
	// no entry qualified.
	Timestamp          int64    `json:"timestamp"`
	CurrentAccumulator string   `json:"currentAccumulator,omitempty"`
	Revoked            []uint32 `json:"revoked,omitempty"`
}

// IsRevoked reports whether a credential index is revoked in this status list
func (sl *RevocationStatusList) IsRevoked(index uint32) bool {
	i := sort.Search(len(sl.Revoked), func(i int) bool { return sl.Revoked[i] >= index })
	return i < len(sl.Revoked) && sl.Revoked[i] == index
}
