package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

func TestEndorsement_DefinitionRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	def := testDefinition()

	data, err := e.endorsement.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)
	require.NoError(t, data.Sign(e.issuerKey))

	req, err := e.endorsement.Endorse(data, e.endorserKey)
	require.NoError(t, err)

	resolved, err := e.endorsement.VerifyCreateDefinition(req, def)
	require.NoError(t, err)
	assert.Equal(t, e.issuer, resolved.Identity)
	assert.Equal(t, e.endorser, resolved.ActingParty)
}

func TestEndorsement_EntryRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	entry := testEntry(testDefinition().Id(), "0x20", "", nil, []uint32{2, 3})

	data, err := e.endorsement.BuildCreateEntryEndorsingData(e.issuer, entry)
	require.NoError(t, err)
	require.NoError(t, data.Sign(e.issuerKey))

	req, err := e.endorsement.Endorse(data, e.endorserKey)
	require.NoError(t, err)

	resolved, err := e.endorsement.VerifyCreateEntry(req, entry)
	require.NoError(t, err)
	assert.Equal(t, e.issuer, resolved.Identity)
	assert.Equal(t, e.endorser, resolved.ActingParty)
}

func TestEndorsement_TamperedPayloadFailsVerification(t *testing.T) {
	e := newTestEngine(t)
	def := testDefinition()

	data, err := e.endorsement.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)
	require.NoError(t, data.Sign(e.issuerKey))
	req, err := e.endorsement.Endorse(data, e.endorserKey)
	require.NoError(t, err)

	// Verification recomputes the payload from the submitted definition, so a
	// swapped tag invalidates the author signature.
	tampered := testDefinition()
	tampered.Tag = "other"
	_, err = e.endorsement.VerifyCreateDefinition(req, tampered)
	assert.True(t, errors.Is(err, registry.ErrInvalidSignature), "got %v", err)
}

func TestEndorsement_AuthorSignatureByWrongKeyFailsVerification(t *testing.T) {
	e := newTestEngine(t)
	def := testDefinition()

	// The endorser signs the author slot while claiming the issuer's identity
	data, err := e.endorsement.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)
	require.NoError(t, data.Sign(e.endorserKey))
	req, err := e.endorsement.Endorse(data, e.endorserKey)
	require.NoError(t, err)

	_, err = e.endorsement.VerifyCreateDefinition(req, def)
	assert.True(t, errors.Is(err, registry.ErrInvalidSignature), "got %v", err)
}

func TestEndorsement_UnsignedDataCannotBeEndorsed(t *testing.T) {
	e := newTestEngine(t)
	def := testDefinition()

	data, err := e.endorsement.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)

	_, err = e.endorsement.Endorse(data, e.endorserKey)
	assert.True(t, errors.Is(err, registry.ErrInvalidSignature), "got %v", err)
}

func TestEndorsement_ReplacedEndorserFailsVerification(t *testing.T) {
	e := newTestEngine(t)
	def := testDefinition()

	data, err := e.endorsement.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)
	require.NoError(t, data.Sign(e.issuerKey))
	req, err := e.endorsement.Endorse(data, e.endorserKey)
	require.NoError(t, err)

	// Claiming a different endorser than the one who signed must fail
	req.Endorser = e.stranger
	_, err = e.endorsement.VerifyCreateDefinition(req, def)
	assert.True(t, errors.Is(err, registry.ErrInvalidSignature), "got %v", err)
}

func TestEndorsement_DifferentRegistriesProduceDifferentPayloads(t *testing.T) {
	e := newTestEngine(t)
	def := testDefinition()

	otherAddress, err := crypto.ParseAddress("0x0000000000000000000000000000000000006002")
	require.NoError(t, err)
	other := NewEndorsementService(otherAddress, "", nil)

	data1, err := e.endorsement.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)
	data2, err := other.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)

	assert.NotEqual(t, data1.Payload, data2.Payload, "payloads must bind the registry address")

	// A signature produced for one registry must not verify against another
	require.NoError(t, data1.Sign(e.issuerKey))
	req, err := e.endorsement.Endorse(data1, e.endorserKey)
	require.NoError(t, err)
	_, err = other.VerifyCreateDefinition(req, def)
	assert.True(t, errors.Is(err, registry.ErrInvalidSignature), "got %v", err)
}

func TestEndorsement_VerifiedRequestFlowsThroughDefinitionCreate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	def := testDefinition()

	data, err := e.endorsement.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)
	require.NoError(t, data.Sign(e.issuerKey))
	req, err := e.endorsement.Endorse(data, e.endorserKey)
	require.NoError(t, err)

	resolved, err := e.endorsement.VerifyCreateDefinition(req, def)
	require.NoError(t, err)

	record, err := e.defs.Create(ctx, def, resolved)
	require.NoError(t, err)
	assert.Equal(t, testIssuerDid, record.IssuerId)
}

func TestEndorsement_EndorserWithoutRoleIsRejectedDownstream(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	def := testDefinition()

	// Signatures verify, but the acting party holds no permitted role
	strangerKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	data, err := e.endorsement.BuildCreateDefinitionEndorsingData(e.issuer, def)
	require.NoError(t, err)
	require.NoError(t, data.Sign(e.issuerKey))
	req, err := e.endorsement.Endorse(data, strangerKey)
	require.NoError(t, err)

	resolved, err := e.endorsement.VerifyCreateDefinition(req, def)
	require.NoError(t, err)

	_, err = e.defs.Create(ctx, def, resolved)
	assert.True(t, errors.Is(err, registry.ErrNotAuthorized), "got %v", err)
}
