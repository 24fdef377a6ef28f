package resolver

import "errors"

var (
	// ErrDomainRequired is returned when the request has no domain.
	ErrDomainRequired = errors.New("domain is required")

	// ErrInvalidMode is returned for a mode outside the closed enumeration.
	ErrInvalidMode = errors.New("invalid acquisition mode")

	// ErrImportPathRequired is returned when import mode is requested
	// without certificate and key paths.
	ErrImportPathRequired = errors.New("import requires certificate and key paths")

	// ErrImportInvalid is returned when supplied import files are missing,
	// malformed, or mismatched. Import never falls back: the caller chose
	// the files explicitly.
	ErrImportInvalid = errors.New("imported certificate/key pair is invalid")

	// ErrAcmeNotPossible is returned when acme mode is requested directly
	// but the prerequisites (privilege, configured client) are missing.
	ErrAcmeNotPossible = errors.New("acme acquisition not possible")
)
