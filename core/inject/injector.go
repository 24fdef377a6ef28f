package inject

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/devmatic-io/certmate/core/certcheck"
	"github.com/devmatic-io/certmate/core/certstore"
	"github.com/devmatic-io/certmate/core/container"
	"github.com/devmatic-io/certmate/core/logger"
)

// Defaults match the nginx layout the managed proxy image ships with.
const (
	DefaultTLSDir       = "/etc/nginx/ssl"
	DefaultReloadSignal = "HUP"
)

// Injector copies a validated certificate/key pair into a running
// reverse-proxy container and triggers a graceful reload. Injection is only
// considered successful once the in-container copies validate, not just the
// source files.
type Injector struct {
	runtime      container.Runtime
	checker      *certcheck.Validator
	tlsDir       string
	certName     string
	reloadSignal string
	log          *slog.Logger
}

// Option configures an Injector.
type Option func(*Injector)

// WithTLSDir overrides the in-container directory for the TLS files.
func WithTLSDir(dir string) Option {
	return func(i *Injector) {
		if dir != "" {
			i.tlsDir = dir
		}
	}
}

// WithCertName overrides the base name of the injected files.
func WithCertName(name string) Option {
	return func(i *Injector) {
		if name != "" {
			i.certName = name
		}
	}
}

// WithReloadSignal overrides the graceful reload signal.
func WithReloadSignal(signal string) Option {
	return func(i *Injector) {
		if signal != "" {
			i.reloadSignal = signal
		}
	}
}

// WithLogger sets the injector logger.
func WithLogger(log *slog.Logger) Option {
	return func(i *Injector) {
		if log != nil {
			i.log = log
		}
	}
}

// New creates an Injector over the given container runtime and validator.
func New(runtime container.Runtime, checker *certcheck.Validator, opts ...Option) *Injector {
	i := &Injector{
		runtime:      runtime,
		checker:      checker,
		tlsDir:       DefaultTLSDir,
		certName:     "server",
		reloadSignal: DefaultReloadSignal,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// CertPath returns the in-container certificate path.
func (i *Injector) CertPath() string { return path.Join(i.tlsDir, i.certName+".crt") }

// KeyPath returns the in-container private key path.
func (i *Injector) KeyPath() string { return path.Join(i.tlsDir, i.certName+".key") }

// Inject pushes the bundle into the named container and reloads it.
// A stopped container fails with ErrContainerNotRunning; this component
// never starts one. Reload is graceful (signal) with a restart fallback.
func (i *Injector) Inject(ctx context.Context, bundle *certstore.Bundle, containerName string) error {
	running, err := i.runtime.IsRunning(ctx, containerName)
	if err != nil {
		return fmt.Errorf("%w: query container %s: %w", ErrInjectionFailed, containerName, err)
	}
	if !running {
		return fmt.Errorf("%w: %s", ErrContainerNotRunning, containerName)
	}

	if err := i.runtime.CopyTo(ctx, containerName, i.CertPath(), bundle.CertPEM, 0o644); err != nil {
		return fmt.Errorf("%w: copy certificate: %w", ErrInjectionFailed, err)
	}
	if err := i.runtime.CopyTo(ctx, containerName, i.KeyPath(), bundle.KeyPEM, 0o600); err != nil {
		return fmt.Errorf("%w: copy private key: %w", ErrInjectionFailed, err)
	}

	if err := i.runtime.Signal(ctx, containerName, i.reloadSignal); err != nil {
		i.log.Warn("graceful reload unavailable, restarting container",
			logger.Component("inject"),
			logger.Container(containerName),
			logger.Error(err),
		)
		if err := i.runtime.Restart(ctx, containerName); err != nil {
			return fmt.Errorf("%w: restart after failed reload: %w", ErrInjectionFailed, err)
		}
	}

	if err := i.verifyInContainer(ctx, containerName); err != nil {
		return err
	}

	i.log.Info("certificate injected",
		logger.Component("inject"),
		logger.Container(containerName),
		logger.Path(i.CertPath()),
	)
	return nil
}

// verifyInContainer re-reads the files from inside the container and runs
// the structural and key-match checks against that copy.
func (i *Injector) verifyInContainer(ctx context.Context, containerName string) error {
	certPEM, err := i.runtime.ReadFile(ctx, containerName, i.CertPath())
	if err != nil {
		return fmt.Errorf("%w: read back certificate: %w", ErrInjectionFailed, err)
	}
	keyPEM, err := i.runtime.ReadFile(ctx, containerName, i.KeyPath())
	if err != nil {
		return fmt.Errorf("%w: read back private key: %w", ErrInjectionFailed, err)
	}

	result := i.checker.Validate(certPEM, keyPEM)
	if !result.StructurallyValid {
		return fmt.Errorf("%w: in-container copy does not parse", ErrInjectionFailed)
	}
	if !result.KeyMatchesCert {
		return fmt.Errorf("%w: in-container key does not match certificate", ErrInjectionFailed)
	}
	return nil
}
