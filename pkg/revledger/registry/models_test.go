package registry

import (
	"strings"
	"testing"
)

func TestDefinitionId_FollowsIdentifierScheme(t *testing.T) {
	def := &RevocationRegistryDefinition{
		IssuerId:     "did:indy2:testnet:SEp33q43PsdP7nDATyySSH",
		RevocDefType: "CL_ACCUM",
		CredDefId:    "did:indy2:testnet:SEp33q43PsdP7nDATyySSH/anoncreds/v0/CLAIM_DEF/56495/mctc",
		Tag:          "default",
	}

	id := def.Id()
	if !strings.HasPrefix(id, def.IssuerId+"/anoncreds/v0/REV_REG_DEF/") {
		t.Fatalf("unexpected id prefix: %s", id)
	}
	if !strings.HasSuffix(id, "/default") {
		t.Fatalf("unexpected id suffix: %s", id)
	}
}

func TestDefinitionKey_IsStableAndContentDerived(t *testing.T) {
	def := &RevocationRegistryDefinition{
		IssuerId:  "did:indy2:testnet:SEp33q43PsdP7nDATyySSH",
		CredDefId: "did:indy2:testnet:SEp33q43PsdP7nDATyySSH/anoncreds/v0/CLAIM_DEF/56495/mctc",
		Tag:       "default",
	}

	key1 := def.Key()
	key2 := KeyForId(def.Id())
	if key1 != key2 {
		t.Fatalf("key derivation not stable: %s vs %s", key1, key2)
	}

	other := *def
	other.Tag = "second"
	if other.Key() == key1 {
		t.Fatalf("distinct definitions must have distinct keys")
	}

	parsed, err := ParseDefinitionKey(key1.String())
	if err != nil {
		t.Fatalf("ParseDefinitionKey error: %v", err)
	}
	if parsed != key1 {
		t.Fatalf("round trip mismatch: %s vs %s", parsed, key1)
	}
}

func TestDefinitionValidate_RejectsMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RevocationRegistryDefinition)
	}{
		{"missing issuerId", func(d *RevocationRegistryDefinition) { d.IssuerId = "" }},
		{"missing credDefId", func(d *RevocationRegistryDefinition) { d.CredDefId = "" }},
		{"missing tag", func(d *RevocationRegistryDefinition) { d.Tag = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := &RevocationRegistryDefinition{
				IssuerId:  "did:indy2:testnet:abc",
				CredDefId: "did:indy2:testnet:abc/anoncreds/v0/CLAIM_DEF/1/tag",
				Tag:       "default",
			}
			tc.mutate(def)
			if err := def.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestEntryValidateWithLedger_PrevAccumulatorMatrix(t *testing.T) {
	cases := []struct {
		name    string
		local   string
		ledger  string
		wantErr bool
	}{
		{"both empty (first entry)", "", "", false},
		{"both present and equal", "0x20", "0x20", false},
		{"both present and different", "0x21", "0x20", true},
		{"missing locally, present on ledger", "", "0x20", true},
		{"present locally, missing on ledger", "0x20", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &RevocationRegistryEntry{
				RevRegDefId: "def",
				Data: RevocationRegistryEntryData{
					CurrentAccumulator: "0x30",
					PrevAccumulator:    tc.local,
				},
			}
			err := entry.ValidateWithLedger(tc.ledger)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEntryValidateWithStatusList_ChecksIssuerConsistency(t *testing.T) {
	entry := &RevocationRegistryEntry{
		RevRegDefId: "def",
		IssuerId:    "did:indy2:testnet:attacker",
		Data:        RevocationRegistryEntryData{CurrentAccumulator: "0x30", PrevAccumulator: "0x20"},
	}
	statusList := &RevocationStatusList{
		RevRegDefId:        "def",
		IssuerId:           "did:indy2:testnet:owner",
		CurrentAccumulator: "0x20",
	}

	if err := entry.ValidateWithStatusList(statusList); err == nil {
		t.Fatalf("expected issuer mismatch error")
	}

	entry.IssuerId = "did:indy2:testnet:owner"
	if err := entry.ValidateWithStatusList(statusList); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatusListIsRevoked(t *testing.T) {
	list := &RevocationStatusList{Revoked: []uint32{3, 11, 12, 13}}

	for _, index := range []uint32{3, 11, 12, 13} {
		if !list.IsRevoked(index) {
			t.Fatalf("expected index %d revoked", index)
		}
	}
	for _, index := range []uint32{0, 2, 4, 14} {
		if list.IsRevoked(index) {
			t.Fatalf("expected index %d not revoked", index)
		}
	}
}
