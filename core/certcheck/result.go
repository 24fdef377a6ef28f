package certcheck

import "time"

// ExpiryStatus is the three-way expiry classification. A certificate inside
// the warning window is still valid; collapsing the states into a boolean
// would hide the difference between "renew soon" and "already broken".
type ExpiryStatus int

const (
	// ExpiryUnknown means the certificate could not be parsed.
	ExpiryUnknown ExpiryStatus = iota
	// ExpiryHealthy means expiry is further out than the warning threshold.
	ExpiryHealthy
	// ExpiryWarning means the certificate is valid but expires within the
	// warning threshold.
	ExpiryWarning
	// ExpiryExpired means the certificate's notAfter is in the past.
	ExpiryExpired
)

// String returns the operator-facing name of the status.
func (s ExpiryStatus) String() string {
	switch s {
	case ExpiryHealthy:
		return "healthy"
	case ExpiryWarning:
		return "warning"
	case ExpiryExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Result is the outcome of a validation pass. It is computed fresh on every
// call and never cached, because the underlying files can change between
// calls through rotation or external import.
type Result struct {
	StructurallyValid bool
	KeyMatchesCert    bool
	DomainMatches     bool
	DaysUntilExpiry   int
	Expiry            ExpiryStatus

	// Informational fields for status display; zero when parsing failed.
	CommonName string
	DNSNames   []string
	NotAfter   time.Time
	KeySize    int
}

// Valid reports whether the bundle passed the structural and key-match
// checks and has not expired.
func (r Result) Valid() bool {
	return r.StructurallyValid && r.KeyMatchesCert && r.Expiry != ExpiryExpired
}

// ValidForDomain additionally requires the domain check to have passed.
func (r Result) ValidForDomain() bool {
	return r.Valid() && r.DomainMatches
}
