package certcheck

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"time"
)

// DefaultWarningThresholdDays is the expiry warning window applied when no
// threshold option is given.
const DefaultWarningThresholdDays = 30

// Validator inspects certificate/key pairs for structural validity, key-pair
// match, domain applicability, and expiry. It holds no file state of its
// own; callers pass in the PEM material to inspect.
type Validator struct {
	warningThresholdDays int
	now                  func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithWarningThreshold overrides the expiry warning window in days.
func WithWarningThreshold(days int) Option {
	return func(v *Validator) {
		if days > 0 {
			v.warningThresholdDays = days
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// New creates a Validator with the default 30-day warning threshold.
func New(opts ...Option) *Validator {
	v := &Validator{
		warningThresholdDays: DefaultWarningThresholdDays,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the structural, key-match, and expiry checks. It never
// returns an error: absence or corruption is reported through
// StructurallyValid=false.
func (v *Validator) Validate(certPEM, keyPEM []byte) Result {
	return v.ValidateForDomain(certPEM, keyPEM, "")
}

// ValidateForDomain runs Validate plus the domain applicability check when
// domain is non-empty: exact match against the Common Name, or exact or
// wildcard match against any SAN DNS entry.
func (v *Validator) ValidateForDomain(certPEM, keyPEM []byte, domain string) Result {
	var result Result

	cert := parseCertificate(certPEM)
	key := parsePrivateKey(keyPEM)
	if cert == nil || key == nil {
		return result
	}

	result.StructurallyValid = true
	result.CommonName = cert.Subject.CommonName
	result.DNSNames = cert.DNSNames
	result.NotAfter = cert.NotAfter
	result.KeySize = publicKeySize(cert.PublicKey)
	result.KeyMatchesCert = publicKeysMatch(cert, key)

	now := v.now()
	result.DaysUntilExpiry = int(cert.NotAfter.Sub(now).Hours() / 24)
	switch {
	case now.After(cert.NotAfter):
		result.Expiry = ExpiryExpired
		if result.DaysUntilExpiry == 0 {
			result.DaysUntilExpiry = -1
		}
	case result.DaysUntilExpiry <= v.warningThresholdDays:
		result.Expiry = ExpiryWarning
	default:
		result.Expiry = ExpiryHealthy
	}

	if domain != "" {
		result.DomainMatches = certMatchesDomain(cert, domain)
	}

	return result
}

func parseCertificate(certPEM []byte) *x509.Certificate {
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil
	}
	return cert
}

func parsePrivateKey(keyPEM []byte) crypto.Signer {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil
	}
	return signer
}

// publicKeysMatch compares a deterministic digest of the certificate's
// public key against the same digest derived from the private key.
// Equality is required, not merely the absence of an error.
func publicKeysMatch(cert *x509.Certificate, key crypto.Signer) bool {
	switch certPub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		keyPub, ok := key.Public().(*rsa.PublicKey)
		if !ok {
			return false
		}
		certDigest := sha256.Sum256(certPub.N.Bytes())
		keyDigest := sha256.Sum256(keyPub.N.Bytes())
		return certPub.E == keyPub.E && certDigest == keyDigest
	case *ecdsa.PublicKey, ed25519.PublicKey:
		certDER, err := x509.MarshalPKIXPublicKey(cert.PublicKey)
		if err != nil {
			return false
		}
		keyDER, err := x509.MarshalPKIXPublicKey(key.Public())
		if err != nil {
			return false
		}
		return bytes.Equal(certDER, keyDER)
	default:
		return false
	}
}

func publicKeySize(pub any) int {
	switch p := pub.(type) {
	case *rsa.PublicKey:
		return p.N.BitLen()
	case *ecdsa.PublicKey:
		return p.Curve.Params().BitSize
	case ed25519.PublicKey:
		return ed25519.PublicKeySize * 8
	default:
		return 0
	}
}

func certMatchesDomain(cert *x509.Certificate, domain string) bool {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))

	if strings.EqualFold(cert.Subject.CommonName, domain) {
		return true
	}
	for _, san := range cert.DNSNames {
		if sanMatchesDomain(san, domain) {
			return true
		}
	}
	return false
}

// sanMatchesDomain matches a SAN entry against a domain, supporting a
// single-label wildcard in the leftmost position ("*.example.com" matches
// "www.example.com" but not "example.com" or "a.b.example.com").
func sanMatchesDomain(san, domain string) bool {
	san = strings.ToLower(strings.TrimSuffix(san, "."))
	if san == domain {
		return true
	}

	suffix, ok := strings.CutPrefix(san, "*.")
	if !ok {
		return false
	}
	label, rest, found := strings.Cut(domain, ".")
	return found && label != "" && rest == suffix
}
