package services

import (
	"encoding/json"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"

	"github.com/ajna-inc/kanon-ledger/pkg/core/crypto"
	"github.com/ajna-inc/kanon-ledger/pkg/core/logger"
	"github.com/ajna-inc/kanon-ledger/pkg/revledger/registry"
)

// DefaultEndorsementDomain is the fixed domain prefix of the canonical
// endorsing payload encoding. All verifiers of a deployment must share it.
const DefaultEndorsementDomain = "kanon-ledger/endorsement/v1"

// Operation names bound into endorsing payloads
const (
	OpCreateDefinition = "createRevocationRegistryDefinition"
	OpCreateEntry      = "createRevocationRegistryEntry"
	opEndorsePrefix    = "endorse:"
)

// EndorsingData is a canonical payload a controlling identity signs off-ledger
// so a distinct endorser can submit the write. Payload is the exact canonical
// byte encoding; verifiers recompute it from the logical arguments, never
// trust it as received.
type EndorsingData struct {
	Registry  crypto.Address `json:"registry"`
	Identity  crypto.Address `json:"identity"`
	Operation string         `json:"operation"`
	Payload   []byte         `json:"payload"`
	// Signature is the author's recoverable signature over the payload digest
	Signature []byte `json:"signature,omitempty"`
}

// SigningDigest returns the digest the author signs
func (d *EndorsingData) SigningDigest() []byte {
	return crypto.Keccak256(d.Payload)
}

// Sign attaches the author's recoverable signature
func (d *EndorsingData) Sign(priv *btcec.PrivateKey) error {
	sig, err := crypto.SignRecoverable(priv, d.SigningDigest())
	if err != nil {
		return errors.Wrap(err, "signing endorsing data")
	}
	d.Signature = sig
	return nil
}

// EndorsementRequest is the full delegated submission: author-signed endorsing
// data wrapped and signed by the endorser. Two independent signatures are
// always required — the engine never accepts a payload signed only by the
// endorser as authorization for the identity's action.
type EndorsementRequest struct {
	Data              *EndorsingData `json:"data"`
	Endorser          crypto.Address `json:"endorser"`
	EndorserSignature []byte         `json:"endorserSignature"`
}

// EndorsementService builds and verifies delegated-authorization payloads
type EndorsementService struct {
	registryAddress crypto.Address
	domain          string
	log             logger.Logger
}

// NewEndorsementService creates a new endorsement service bound to a registry
// address and domain prefix.
func NewEndorsementService(registryAddress crypto.Address, domain string, log logger.Logger) *EndorsementService {
	if domain == "" {
		domain = DefaultEndorsementDomain
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &EndorsementService{registryAddress: registryAddress, domain: domain, log: log}
}

// encodePayload builds the canonical byte encoding: domain prefix, registry
// address, identity, UTF-8 operation name, then each argument in fixed order.
// Arguments must already be fixed-length (variable-length strings and blobs
// are hashed by the callers), so the encoding is reproducible by any verifier
// from the same logical arguments.
func (s *EndorsementService) encodePayload(identity crypto.Address, operation string, args ...[]byte) []byte {
	size := len(s.domain) + crypto.AddressLength*2 + len(operation)
	for _, a := range args {
		size += len(a)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, []byte(s.domain)...)
	buf = append(buf, s.registryAddress[:]...)
	buf = append(buf, identity[:]...)
	buf = append(buf, []byte(operation)...)
	for _, a := range args {
		buf = append(buf, a...)
	}
	return buf
}

// hashArg substitutes a variable-length argument with its 32-byte hash to
// bound payload size.
func hashArg(arg []byte) []byte {
	return crypto.Keccak256(arg)
}

// BuildCreateDefinitionEndorsingData builds the canonical payload authorizing
// creation of a revocation registry definition by the given identity.
func (s *EndorsementService) BuildCreateDefinitionEndorsingData(identity crypto.Address, def *registry.RevocationRegistryDefinition) (*EndorsingData, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	// encoding/json writes struct fields in declaration order, so the
	// definition bytes are a stable function of the logical definition
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, errors.Wrap(err, "encoding definition")
	}

	key := def.Key()
	payload := s.encodePayload(identity, OpCreateDefinition,
		key.Bytes(),
		hashArg([]byte(def.CredDefId)),
		hashArg([]byte(def.IssuerId)),
		hashArg(defBytes),
	)

	return &EndorsingData{
		Registry:  s.registryAddress,
		Identity:  identity,
		Operation: OpCreateDefinition,
		Payload:   payload,
	}, nil
}

// BuildCreateEntryEndorsingData builds the canonical payload authorizing a
// revocation registry entry by the given identity.
func (s *EndorsementService) BuildCreateEntryEndorsingData(identity crypto.Address, entry *registry.RevocationRegistryEntry) (*EndorsingData, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return nil, errors.Wrap(err, "encoding entry")
	}

	key := registry.KeyForId(entry.RevRegDefId)
	payload := s.encodePayload(identity, OpCreateEntry,
		key.Bytes(),
		hashArg([]byte(entry.IssuerId)),
		hashArg(entryBytes),
	)

	return &EndorsingData{
		Registry:  s.registryAddress,
		Identity:  identity,
		Operation: OpCreateEntry,
		Payload:   payload,
	}, nil
}

// endorserDigest is the digest the endorser signs: the same canonical scheme,
// binding the endorser as acting party over the author's payload and signature.
func (s *EndorsementService) endorserDigest(endorser crypto.Address, operation string, authorPayload []byte, authorSignature []byte) []byte {
	payload := s.encodePayload(endorser, opEndorsePrefix+operation,
		hashArg(authorPayload),
		hashArg(authorSignature),
	)
	return crypto.Keccak256(payload)
}

// Endorse wraps author-signed endorsing data into a submission signed by the
// endorser's key.
func (s *EndorsementService) Endorse(data *EndorsingData, endorserKey *btcec.PrivateKey) (*EndorsementRequest, error) {
	if data == nil || len(data.Signature) == 0 {
		return nil, errors.Wrap(registry.ErrInvalidSignature, "endorsing data is not author-signed")
	}

	endorser := crypto.AddressFromPrivateKey(endorserKey)
	digest := s.endorserDigest(endorser, data.Operation, data.Payload, data.Signature)
	sig, err := crypto.SignRecoverable(endorserKey, digest)
	if err != nil {
		return nil, errors.Wrap(err, "signing endorsement")
	}

	return &EndorsementRequest{
		Data:              data,
		Endorser:          endorser,
		EndorserSignature: sig,
	}, nil
}

// VerifyCreateDefinition verifies a delegated definition creation and resolves
// the (identity, actingParty) pair. The canonical payload is recomputed from
// the definition itself, so any tampering after signing surfaces as a
// recovered-identity mismatch.
func (s *EndorsementService) VerifyCreateDefinition(req *EndorsementRequest, def *registry.RevocationRegistryDefinition) (WriteRequest, error) {
	if req == nil || req.Data == nil {
		return WriteRequest{}, errors.Wrap(registry.ErrInvalidSignature, "missing endorsement request")
	}
	expected, err := s.BuildCreateDefinitionEndorsingData(req.Data.Identity, def)
	if err != nil {
		return WriteRequest{}, err
	}
	return s.verify(req, expected)
}

// VerifyCreateEntry verifies a delegated entry creation and resolves the
// (identity, actingParty) pair.
func (s *EndorsementService) VerifyCreateEntry(req *EndorsementRequest, entry *registry.RevocationRegistryEntry) (WriteRequest, error) {
	if req == nil || req.Data == nil {
		return WriteRequest{}, errors.Wrap(registry.ErrInvalidSignature, "missing endorsement request")
	}
	expected, err := s.BuildCreateEntryEndorsingData(req.Data.Identity, entry)
	if err != nil {
		return WriteRequest{}, err
	}
	return s.verify(req, expected)
}

func (s *EndorsementService) verify(req *EndorsementRequest, expected *EndorsingData) (WriteRequest, error) {
	// Author signature over the recomputed digest must recover the claimed
	// identity
	author, err := crypto.RecoverAddress(expected.SigningDigest(), req.Data.Signature)
	if err != nil {
		return WriteRequest{}, errors.Wrapf(registry.ErrInvalidSignature,
			"%s: author signature does not recover: %v", expected.Operation, err)
	}
	if author != req.Data.Identity {
		s.log.Debugf("author recovery mismatch for %s: recovered %s, claimed %s",
			expected.Operation, author, req.Data.Identity)
		return WriteRequest{}, errors.Wrapf(registry.ErrInvalidSignature,
			"%s: recovered identity %s does not match claimed identity %s",
			expected.Operation, author, req.Data.Identity)
	}

	// Endorser signature binds the submitter over the recomputed payload
	digest := s.endorserDigest(req.Endorser, expected.Operation, expected.Payload, req.Data.Signature)
	endorser, err := crypto.RecoverAddress(digest, req.EndorserSignature)
	if err != nil {
		return WriteRequest{}, errors.Wrapf(registry.ErrInvalidSignature,
			"%s: endorser signature does not recover: %v", expected.Operation, err)
	}
	if endorser != req.Endorser {
		return WriteRequest{}, errors.Wrapf(registry.ErrInvalidSignature,
			"%s: recovered endorser %s does not match %s", expected.Operation, endorser, req.Endorser)
	}

	return WriteRequest{Identity: author, ActingParty: endorser}, nil
}
