// =============================
// File: internal/registry/errors.go
// =============================
package registry

import "errors"

var (
	// ErrNotInitialized is returned when the entry point has not been set up.
	ErrNotInitialized = errors.New("registry not initialized")

	// ErrAlreadyInitialized is returned on repeated initialization.
	ErrAlreadyInitialized = errors.New("registry already initialized")

	// ErrUnauthorized is returned when the caller is not the registry
	// authority.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrHandleAlreadyUsed is returned when deploying with a handle that is
	// already registered.
	ErrHandleAlreadyUsed = errors.New("handle already used")

	// ErrAgentNotRegistered is returned when the issuing agent has no record.
	ErrAgentNotRegistered = errors.New("agent not registered")

	// ErrAgentNotAllowed is returned when the issuing agent is disallowed.
	ErrAgentNotAllowed = errors.New("agent not allowed")

	// ErrInvalidPercentageSplit is returned when the self/market/supporter
	// percentages do not sum to 100.
	ErrInvalidPercentageSplit = errors.New("invalid percentage split")

	// ErrNameTooLong is returned when the token name exceeds 32 bytes.
	ErrNameTooLong = errors.New("token name exceeds 32 bytes")

	// ErrSymbolTooLong is returned when the token symbol exceeds 10 bytes.
	ErrSymbolTooLong = errors.New("token symbol exceeds 10 bytes")

	// ErrMetadataURITooLong is returned when the metadata URI exceeds 200
	// bytes.
	ErrMetadataURITooLong = errors.New("metadata URI exceeds 200 bytes")

	// ErrInvalidCurveParams is returned for a zero initial price.
	ErrInvalidCurveParams = errors.New("invalid bonding curve parameters")

	// ErrInvalidVaultConfig is returned for a malformed or inconsistent vault
	// config blob.
	ErrInvalidVaultConfig = errors.New("invalid vault config")

	// ErrInvalidDistributorConfig is returned for a malformed or inconsistent
	// distributor config blob.
	ErrInvalidDistributorConfig = errors.New("invalid distributor config")

	// ErrTokenNotFound is returned when no creator token exists for a mint.
	ErrTokenNotFound = errors.New("creator token not found")

	// ErrAlreadyMinted is returned when the one-time initial mint is invoked
	// again.
	ErrAlreadyMinted = errors.New("initial allocations already minted")
)
