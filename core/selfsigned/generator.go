package selfsigned

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"strings"
	"time"

	"github.com/devmatic-io/certmate/core/logger"
)

// Profile selects the key size and validity period for generated
// certificates.
type Profile struct {
	// KeySize is the RSA modulus length in bits.
	KeySize int
	// ValidityDays is the certificate lifetime.
	ValidityDays int
}

var (
	// Development is the localhost profile: a 2048-bit key with a short
	// lifetime. Browsers will not trust it; generation logs a warning.
	Development = Profile{KeySize: 2048, ValidityDays: 90}

	// Production is the self-signed profile for real domains that cannot
	// use ACME: a 4096-bit key valid for one year.
	Production = Profile{KeySize: 4096, ValidityDays: 365}
)

// ProfileFor returns the profile appropriate for a domain: Development for
// localhost, Production otherwise.
func ProfileFor(domain string) Profile {
	if IsLocal(domain) {
		return Development
	}
	return Production
}

// IsLocal reports whether the domain is a local development name rather
// than a publicly resolvable one.
func IsLocal(domain string) bool {
	domain = strings.ToLower(domain)
	return domain == "localhost" || strings.HasSuffix(domain, ".localhost") ||
		domain == "127.0.0.1" || domain == "::1"
}

// Generator produces self-signed certificate/key pairs for a domain.
type Generator struct {
	profile Profile
	log     *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for generation warnings.
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a Generator for the given profile.
func New(profile Profile, opts ...Option) *Generator {
	g := &Generator{
		profile: profile,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Profile returns the generator's profile.
func (g *Generator) Profile() Profile { return g.profile }

// Generate produces a self-signed certificate and matching RSA key for the
// domain. The SAN list always includes localhost, 127.0.0.1, and ::1; for
// non-localhost domains it additionally covers the domain itself and its
// wildcard parent. Generation is entirely in memory, so a failure leaves no
// partial output behind.
func (g *Generator) Generate(ctx context.Context, domain string) (certPEM, keyPEM []byte, err error) {
	if domain == "" {
		return nil, nil, fmt.Errorf("%w: domain is required", ErrGenerationFailed)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if g.profile.KeySize < 4096 {
		g.log.Warn("generating development-grade self-signed certificate",
			logger.Component("selfsigned"),
			logger.Domain(domain),
			logger.KeySize(g.profile.KeySize),
		)
	}

	key, err := rsa.GenerateKey(rand.Reader, g.profile.KeySize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generate RSA key: %w", ErrGenerationFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generate serial number: %w", ErrGenerationFailed, err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   domain,
			Organization: []string{"certmate self-signed"},
		},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.AddDate(0, 0, g.profile.ValidityDays),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              subjectAltNames(domain),
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sign certificate: %w", ErrGenerationFailed, err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	return certPEM, keyPEM, nil
}

func subjectAltNames(domain string) []string {
	names := []string{"localhost"}
	if !IsLocal(domain) {
		names = append(names, domain, "*."+domain)
	}
	return names
}
