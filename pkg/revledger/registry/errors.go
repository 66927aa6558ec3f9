package registry

import "errors"

// Error taxonomy of the revocation ledger engine. Every failure is terminal
// for the operation that raised it; the engine never retries internally.
// Callers match with errors.Is — messages carry operation, identifier and
// reason.
var (
	// ErrNotFound indicates an absent definition, entry or credential definition.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a duplicate definition id.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotAuthorized indicates a failed role or issuer-ownership check.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidSignature indicates that the identity recovered from a
	// delegated signature does not match the claimed identity, or that a
	// signature cannot be recovered at all.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrHistorySourceUnavailable indicates a transport failure while walking
	// the entry chain. Reconstruction aborts rather than returning a
	// truncated history.
	ErrHistorySourceUnavailable = errors.New("history source unavailable")
)
