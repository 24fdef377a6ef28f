package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every path and knob the certificate lifecycle needs,
// injected explicitly into each component at construction time rather than
// referenced as ambient globals.
type Config struct {
	// SSLDir is the root of the canonical certificate layout.
	SSLDir string `env:"CERTMATE_SSL_DIR" envDefault:"/etc/certmate/ssl"`

	// CertName is the base name of the managed bundle files.
	CertName string `env:"CERTMATE_CERT_NAME" envDefault:"server"`

	// Domain is the default certificate domain.
	Domain string `env:"CERTMATE_DOMAIN" envDefault:"localhost"`

	// AcmeEmail is the Let's Encrypt account email; empty disables ACME.
	AcmeEmail string `env:"CERTMATE_ACME_EMAIL"`

	// AcmeDirectoryURL overrides the CA directory (e.g. staging).
	AcmeDirectoryURL string `env:"CERTMATE_ACME_DIRECTORY_URL"`

	// AcmeTimeout bounds one challenge end to end.
	AcmeTimeout time.Duration `env:"CERTMATE_ACME_TIMEOUT" envDefault:"120s"`

	// ChallengePort is the HTTP-01 challenge port.
	ChallengePort int `env:"CERTMATE_CHALLENGE_PORT" envDefault:"80"`

	// ExpiryWarningDays is the validator's warning threshold.
	ExpiryWarningDays int `env:"CERTMATE_EXPIRY_WARNING_DAYS" envDefault:"30"`

	// ProxyContainer is the name of the managed reverse-proxy container.
	ProxyContainer string `env:"CERTMATE_PROXY_CONTAINER" envDefault:"certmate-proxy"`

	// ContainerTLSDir is where the proxy container expects its TLS files.
	ContainerTLSDir string `env:"CERTMATE_CONTAINER_TLS_DIR" envDefault:"/etc/nginx/ssl"`

	// DockerBinary is the container CLI to shell out to.
	DockerBinary string `env:"CERTMATE_DOCKER_BINARY" envDefault:"docker"`

	// LogJSON switches log output to JSON.
	LogJSON bool `env:"CERTMATE_LOG_JSON" envDefault:"false"`

	// LogDebug raises log verbosity.
	LogDebug bool `env:"CERTMATE_LOG_DEBUG" envDefault:"false"`
}

var loadDotenv sync.Once

// Load parses the configuration from the environment. A .env file in the
// working directory is loaded once, best-effort, before the first parse.
func Load() (*Config, error) {
	loadDotenv.Do(func() {
		_ = godotenv.Load()
	})

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on failure, for use at startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
