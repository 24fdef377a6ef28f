package main

import (
	"log/slog"

	"github.com/devmatic-io/certmate/core/acme"
	"github.com/devmatic-io/certmate/core/certcheck"
	"github.com/devmatic-io/certmate/core/certstore"
	"github.com/devmatic-io/certmate/core/config"
	"github.com/devmatic-io/certmate/core/container"
	"github.com/devmatic-io/certmate/core/inject"
	"github.com/devmatic-io/certmate/core/logger"
	"github.com/devmatic-io/certmate/core/resolver"
)

// app wires the lifecycle components together once per invocation.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *certstore.Store
	checker *certcheck.Validator
	runtime *container.DockerCLI
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logOpts := []logger.Option{}
	if cfg.LogJSON {
		logOpts = append(logOpts, logger.WithJSONFormat())
	}
	if cfg.LogDebug {
		logOpts = append(logOpts, logger.WithLevel(slog.LevelDebug))
	}
	log := logger.New(logOpts...)

	store, err := certstore.New(cfg.SSLDir, cfg.CertName)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		checker: certcheck.New(certcheck.WithWarningThreshold(cfg.ExpiryWarningDays)),
		runtime: container.NewDockerCLI(cfg.DockerBinary),
	}, nil
}

// resolver builds the decision engine, probing the ACME capability once.
func (a *app) resolver() *resolver.Resolver {
	capability := acme.ProbeCapability(a.cfg.ChallengePort)

	arbiter := acme.NewArbiter(a.runtime, a.cfg.ProxyContainer, a.cfg.ChallengePort, a.log)
	clientOpts := []acme.Option{
		acme.WithTimeout(a.cfg.AcmeTimeout),
		acme.WithLogger(a.log),
	}
	if a.cfg.AcmeDirectoryURL != "" {
		clientOpts = append(clientOpts, acme.WithCADirectoryURL(a.cfg.AcmeDirectoryURL))
	}
	client := acme.NewClient(arbiter, clientOpts...)

	return resolver.New(a.store, a.checker,
		resolver.WithACME(client, capability),
		resolver.WithLogger(a.log),
	)
}

func (a *app) injector() *inject.Injector {
	return inject.New(a.runtime, a.checker,
		inject.WithTLSDir(a.cfg.ContainerTLSDir),
		inject.WithCertName(a.cfg.CertName),
		inject.WithLogger(a.log),
	)
}
