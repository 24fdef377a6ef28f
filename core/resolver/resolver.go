package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/devmatic-io/certmate/core/acme"
	"github.com/devmatic-io/certmate/core/certcheck"
	"github.com/devmatic-io/certmate/core/certstore"
	"github.com/devmatic-io/certmate/core/logger"
	"github.com/devmatic-io/certmate/core/selfsigned"
)

// ACME-issued certificates carry a 90-day validity and an RSA-2048 key.
const (
	acmeValidityDays = 90
	acmeKeySize      = 2048
)

// Obtainer is the ACME acquisition seam. acme.Client satisfies it.
type Obtainer interface {
	Obtain(ctx context.Context, domain, email string) (certPEM, keyPEM []byte, err error)
}

// SelfSigner is the self-signed acquisition seam. selfsigned.Generator
// satisfies it.
type SelfSigner interface {
	Generate(ctx context.Context, domain string) (certPEM, keyPEM []byte, err error)
	Profile() selfsigned.Profile
}

// Request carries one acquisition request through the resolver.
type Request struct {
	Domain         string
	Mode           Mode
	Email          string
	ImportCertPath string
	ImportKeyPath  string
	Force          bool
}

// Resolver is the decision engine: given current certificate state, the
// requested mode, and the domain, it picks the acquisition path and
// orchestrates it against the store. Every transition takes the store's
// advisory lock, backs up any existing bundle before overwriting it, and
// either fully succeeds or leaves the prior bundle restorable.
type Resolver struct {
	store         *certstore.Store
	checker       *certcheck.Validator
	acme          Obtainer
	capability    acme.Capability
	log           *slog.Logger
	selfSignerFor func(domain string) SelfSigner
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithACME wires in the ACME obtainer and the capability probe result that
// gates it. Without this option the resolver never attempts ACME.
func WithACME(obtainer Obtainer, capability acme.Capability) Option {
	return func(r *Resolver) {
		r.acme = obtainer
		r.capability = capability
	}
}

// WithLogger sets the resolver logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithSelfSignerFactory overrides how self-signed generators are built per
// domain, primarily for tests that need small keys.
func WithSelfSignerFactory(factory func(domain string) SelfSigner) Option {
	return func(r *Resolver) {
		if factory != nil {
			r.selfSignerFor = factory
		}
	}
}

// New creates a Resolver over the given store and validator.
func New(store *certstore.Store, checker *certcheck.Validator, opts ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		checker: checker,
		log:     slog.Default(),
		selfSignerFor: func(domain string) SelfSigner {
			return selfsigned.New(selfsigned.ProfileFor(domain))
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve executes one acquisition request. For ModeDisabled the returned
// bundle is nil: the store has been backed up and emptied.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*certstore.Bundle, error) {
	if strings.TrimSpace(req.Domain) == "" {
		return nil, ErrDomainRequired
	}
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	req.Mode = mode

	if err := r.store.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = r.store.Unlock() }()

	switch mode {
	case ModePreserve:
		if bundle := r.preservable(req.Domain); bundle != nil {
			r.log.Info("existing bundle preserved",
				logger.Component("resolver"),
				logger.Domain(req.Domain),
				logger.Event("preserved"),
			)
			return bundle, nil
		}
		r.log.Info("no preservable bundle, acquiring automatically",
			logger.Component("resolver"),
			logger.Domain(req.Domain),
		)
		return r.resolveAuto(ctx, req)
	case ModeAuto:
		return r.resolveAuto(ctx, req)
	case ModeSelfSigned:
		if err := r.backupExisting(); err != nil {
			return nil, err
		}
		return r.acquireSelfSigned(ctx, req.Domain)
	case ModeACME:
		if !r.acmePossible() {
			return nil, fmt.Errorf("%w: requires privileged execution and a configured client", ErrAcmeNotPossible)
		}
		if err := r.backupExisting(); err != nil {
			return nil, err
		}
		return r.acquireACME(ctx, req.Domain, req.Email)
	case ModeImport:
		return r.resolveImport(req)
	case ModeDisabled:
		if err := r.backupExisting(); err != nil {
			return nil, err
		}
		if err := r.store.Remove(); err != nil {
			return nil, err
		}
		r.log.Info("tls disabled, bundle removed",
			logger.Component("resolver"),
			logger.Domain(req.Domain),
		)
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// resolveAuto implements the default path: preserve when possible, then
// ACME for real domains, then self-signed. ACME failures are recovered
// locally; only the final self-signed failure surfaces.
func (r *Resolver) resolveAuto(ctx context.Context, req Request) (*certstore.Bundle, error) {
	if !req.Force {
		if bundle := r.preservable(req.Domain); bundle != nil {
			r.log.Info("existing bundle still valid, keeping it",
				logger.Component("resolver"),
				logger.Domain(req.Domain),
				logger.Event("preserved"),
			)
			return bundle, nil
		}
	}

	if err := r.backupExisting(); err != nil {
		return nil, err
	}

	if selfsigned.IsLocal(req.Domain) {
		return r.acquireSelfSigned(ctx, req.Domain)
	}

	switch {
	case !r.acmePossible():
		r.log.Warn("acme prerequisites not met, using self-signed",
			logger.Component("resolver"),
			logger.Domain(req.Domain),
			logger.Fallback(ModeACME.String(), ModeSelfSigned.String()),
		)
	case req.Email == "":
		r.log.Warn("no account email, using self-signed",
			logger.Component("resolver"),
			logger.Domain(req.Domain),
			logger.Fallback(ModeACME.String(), ModeSelfSigned.String()),
		)
	default:
		bundle, err := r.acquireACME(ctx, req.Domain, req.Email)
		if err == nil {
			return bundle, nil
		}
		// The store is untouched by a failed ACME attempt; the certificate
		// is only written after the challenge succeeds.
		r.log.Warn("acme acquisition failed, falling back to self-signed",
			logger.Component("resolver"),
			logger.Domain(req.Domain),
			logger.Fallback(ModeACME.String(), ModeSelfSigned.String()),
			logger.Error(err),
		)
	}

	return r.acquireSelfSigned(ctx, req.Domain)
}

// preservable returns the current bundle when it passes full validation for
// the domain, nil otherwise.
func (r *Resolver) preservable(domain string) *certstore.Bundle {
	bundle, err := r.store.Read()
	if err != nil {
		return nil
	}
	result := r.checker.ValidateForDomain(bundle.CertPEM, bundle.KeyPEM, domain)
	if !result.ValidForDomain() {
		return nil
	}
	return bundle
}

func (r *Resolver) acmePossible() bool {
	return r.acme != nil && r.capability.Privileged
}

func (r *Resolver) backupExisting() error {
	record, err := r.store.Backup()
	if err != nil {
		return err
	}
	if record != nil {
		r.log.Info("existing bundle backed up",
			logger.Component("resolver"),
			logger.Path(record.CertPath),
		)
	}
	return nil
}

func (r *Resolver) acquireACME(ctx context.Context, domain, email string) (*certstore.Bundle, error) {
	certPEM, keyPEM, err := r.acme.Obtain(ctx, domain, email)
	if err != nil {
		return nil, err
	}

	meta := certstore.NewMetadata(domain, ModeACME.String(), acmeValidityDays, acmeKeySize)
	if err := r.store.Write(certPEM, keyPEM, meta); err != nil {
		return nil, err
	}

	r.log.Info("acme certificate stored",
		logger.Component("resolver"),
		logger.Domain(domain),
		logger.Mode(ModeACME.String()),
	)
	return r.store.Read()
}

func (r *Resolver) acquireSelfSigned(ctx context.Context, domain string) (*certstore.Bundle, error) {
	signer := r.selfSignerFor(domain)
	certPEM, keyPEM, err := signer.Generate(ctx, domain)
	if err != nil {
		return nil, err
	}

	profile := signer.Profile()
	meta := certstore.NewMetadata(domain, ModeSelfSigned.String(), profile.ValidityDays, profile.KeySize)
	if err := r.store.Write(certPEM, keyPEM, meta); err != nil {
		return nil, err
	}

	r.log.Info("self-signed certificate stored",
		logger.Component("resolver"),
		logger.Domain(domain),
		logger.Mode(ModeSelfSigned.String()),
		logger.KeySize(profile.KeySize),
	)
	return r.store.Read()
}

func (r *Resolver) resolveImport(req Request) (*certstore.Bundle, error) {
	certPath, keyPath, err := resolveImportPaths(req.ImportCertPath, req.ImportKeyPath)
	if err != nil {
		return nil, err
	}

	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read certificate %s: %w", ErrImportInvalid, certPath, err)
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read key %s: %w", ErrImportInvalid, keyPath, err)
	}

	// Validate before touching the store, so a bad import leaves the
	// existing bundle fully intact.
	result := r.checker.ValidateForDomain(certPEM, keyPEM, req.Domain)
	if !result.StructurallyValid {
		return nil, fmt.Errorf("%w: files do not parse as certificate and key", ErrImportInvalid)
	}
	if !result.KeyMatchesCert {
		return nil, fmt.Errorf("%w: private key does not match certificate", ErrImportInvalid)
	}
	if !result.DomainMatches {
		r.log.Warn("imported certificate does not cover requested domain",
			logger.Component("resolver"),
			logger.Domain(req.Domain),
			slog.String("common_name", result.CommonName),
		)
	}
	if result.Expiry == certcheck.ExpiryExpired {
		r.log.Warn("imported certificate is already expired",
			logger.Component("resolver"),
			logger.Domain(req.Domain),
		)
	}

	if err := r.backupExisting(); err != nil {
		return nil, err
	}

	meta := certstore.NewMetadata(req.Domain, ModeImport.String(), result.DaysUntilExpiry, result.KeySize)
	if err := r.store.Write(certPEM, keyPEM, meta); err != nil {
		return nil, err
	}

	r.log.Info("certificate imported",
		logger.Component("resolver"),
		logger.Domain(req.Domain),
		logger.Mode(ModeImport.String()),
		logger.Path(certPath),
	)
	return r.store.Read()
}

// resolveImportPaths accepts either explicit file paths or a directory
// containing exactly one .crt/.key pair.
func resolveImportPaths(certPath, keyPath string) (string, string, error) {
	if certPath == "" {
		return "", "", ErrImportPathRequired
	}

	info, err := os.Stat(certPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrImportInvalid, certPath, err)
	}

	if info.IsDir() {
		return findPairInDir(certPath)
	}

	if keyPath == "" {
		return "", "", ErrImportPathRequired
	}
	if _, err := os.Stat(keyPath); err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrImportInvalid, keyPath, err)
	}
	return certPath, keyPath, nil
}

func findPairInDir(dir string) (string, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrImportInvalid, dir, err)
	}

	var certs, keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".crt", ".pem":
			certs = append(certs, filepath.Join(dir, entry.Name()))
		case ".key":
			keys = append(keys, filepath.Join(dir, entry.Name()))
		}
	}

	if len(certs) != 1 || len(keys) != 1 {
		return "", "", fmt.Errorf("%w: %s must contain exactly one certificate and one key", ErrImportInvalid, dir)
	}
	return certs[0], keys[0], nil
}
