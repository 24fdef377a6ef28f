package acme

import "errors"

var (
	// ErrUnavailable is returned when the ACME path cannot be attempted at
	// all: missing privilege, unreachable directory, or account setup
	// failure. Recoverable via self-signed fallback.
	ErrUnavailable = errors.New("acme unavailable")

	// ErrPortContention is returned when an unrelated process holds the
	// challenge port. The occupant is never stopped.
	ErrPortContention = errors.New("challenge port held by unrelated process")

	// ErrChallengeFailed is returned when the HTTP-01 challenge or order
	// itself fails.
	ErrChallengeFailed = errors.New("acme challenge failed")

	// ErrEmailRequired is returned when no account email is provided.
	ErrEmailRequired = errors.New("email is required for the acme account")

	// ErrDomainRequired is returned when no domain is provided.
	ErrDomainRequired = errors.New("domain is required")
)
