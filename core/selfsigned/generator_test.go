package selfsigned_test

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatic-io/certmate/core/certcheck"
	"github.com/devmatic-io/certmate/core/selfsigned"
)

// testProfile keeps key generation fast in tests.
var testProfile = selfsigned.Profile{KeySize: 1024, ValidityDays: 30}

func parseCert(t *testing.T, certPEM []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return cert
}

func TestProfileFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		domain string
		want   selfsigned.Profile
	}{
		{domain: "localhost", want: selfsigned.Development},
		{domain: "app.localhost", want: selfsigned.Development},
		{domain: "127.0.0.1", want: selfsigned.Development},
		{domain: "example.com", want: selfsigned.Production},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, selfsigned.ProfileFor(tt.domain))
		})
	}
}

func TestGenerateLocalhost(t *testing.T) {
	t.Parallel()
	gen := selfsigned.New(testProfile)

	certPEM, keyPEM, err := gen.Generate(context.Background(), "localhost")
	require.NoError(t, err)

	cert := parseCert(t, certPEM)
	assert.Equal(t, "localhost", cert.Subject.CommonName)
	assert.Contains(t, cert.DNSNames, "localhost")

	ips := make([]string, 0, len(cert.IPAddresses))
	for _, ip := range cert.IPAddresses {
		ips = append(ips, ip.String())
	}
	assert.Contains(t, ips, "127.0.0.1")
	assert.Contains(t, ips, net.ParseIP("::1").String())

	// The generated pair must always match.
	result := certcheck.New().ValidateForDomain(certPEM, keyPEM, "localhost")
	assert.True(t, result.StructurallyValid)
	assert.True(t, result.KeyMatchesCert)
	assert.True(t, result.DomainMatches)
}

func TestGenerateRealDomainCoversWildcard(t *testing.T) {
	t.Parallel()
	gen := selfsigned.New(testProfile)

	certPEM, keyPEM, err := gen.Generate(context.Background(), "example.com")
	require.NoError(t, err)

	cert := parseCert(t, certPEM)
	assert.Contains(t, cert.DNSNames, "example.com")
	assert.Contains(t, cert.DNSNames, "*.example.com")
	assert.Contains(t, cert.DNSNames, "localhost")

	checker := certcheck.New()
	assert.True(t, checker.ValidateForDomain(certPEM, keyPEM, "example.com").DomainMatches)
	assert.True(t, checker.ValidateForDomain(certPEM, keyPEM, "www.example.com").DomainMatches)
}

func TestGenerateValidityFollowsProfile(t *testing.T) {
	t.Parallel()
	gen := selfsigned.New(selfsigned.Profile{KeySize: 1024, ValidityDays: 7})

	certPEM, _, err := gen.Generate(context.Background(), "localhost")
	require.NoError(t, err)

	cert := parseCert(t, certPEM)
	lifetime := cert.NotAfter.Sub(cert.NotBefore)
	assert.InDelta(t, float64(7*24), lifetime.Hours(), 2)
}

func TestGenerateEmptyDomain(t *testing.T) {
	t.Parallel()
	gen := selfsigned.New(testProfile)

	_, _, err := gen.Generate(context.Background(), "")
	assert.ErrorIs(t, err, selfsigned.ErrGenerationFailed)
}

func TestGenerateCanceledContext(t *testing.T) {
	t.Parallel()
	gen := selfsigned.New(testProfile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := gen.Generate(ctx, "localhost")
	assert.ErrorIs(t, err, selfsigned.ErrGenerationFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
