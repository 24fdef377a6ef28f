package acme

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"

	"github.com/devmatic-io/certmate/core/logger"
)

// DefaultTimeout bounds one certificate order end to end, so a hung
// challenge cannot keep the reverse proxy stopped indefinitely.
const DefaultTimeout = 120 * time.Second

// Client obtains publicly-trusted certificates through the ACME HTTP-01
// challenge, arbitrating access to the challenge port with the managed
// reverse-proxy container. It never falls back to another acquisition path
// itself; failure semantics stay explicit to the caller.
type Client struct {
	arbiter         *Arbiter
	caDirURL        string
	keyType         certcrypto.KeyType
	timeout         time.Duration
	httpHost        string
	log             *slog.Logger
	clientFactory   clientFactory
	accountKeyMaker func() (crypto.PrivateKey, error)
}

// Option configures a Client.
type Option func(*Client)

// WithCADirectoryURL overrides the ACME directory URL. Defaults to the
// Let's Encrypt production directory; point it at staging in tests.
func WithCADirectoryURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.caDirURL = url
		}
	}
}

// WithTimeout overrides the end-to-end challenge timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCertificateKeyType overrides the key type of the issued certificate's
// private key.
func WithCertificateKeyType(keyType certcrypto.KeyType) Option {
	return func(c *Client) {
		if keyType != "" {
			c.keyType = keyType
		}
	}
}

// WithHTTP01Host selects the bind host for the internal challenge server.
// Leave empty to listen on all interfaces.
func WithHTTP01Host(host string) Option {
	return func(c *Client) {
		c.httpHost = host
	}
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a Client that arbitrates the challenge port through the
// given Arbiter.
func NewClient(arbiter *Arbiter, opts ...Option) *Client {
	c := &Client{
		arbiter:       arbiter,
		caDirURL:      lego.LEDirectoryProduction,
		keyType:       certcrypto.RSA2048,
		timeout:       DefaultTimeout,
		log:           slog.Default(),
		clientFactory: defaultClientFactory,
		accountKeyMaker: func() (crypto.PrivateKey, error) {
			return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Obtain runs the HTTP-01 challenge for a single domain and returns the
// issued certificate chain and private key. The challenge port is
// arbitrated first: a free port is used directly, the managed proxy is
// stopped for the duration and restarted unconditionally, and any other
// occupant aborts the attempt with ErrPortContention.
func (c *Client) Obtain(ctx context.Context, domain, email string) (certPEM, keyPEM []byte, err error) {
	if domain == "" {
		return nil, nil, ErrDomainRequired
	}
	if email == "" {
		return nil, nil, ErrEmailRequired
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	state, err := c.arbiter.Probe(ctx)
	if err != nil {
		return nil, nil, err
	}
	c.log.Info("challenge port probed",
		logger.Component("acme"),
		logger.Domain(domain),
		slog.String("port_state", state.String()),
	)

	switch state {
	case PortFree:
		return c.runChallenge(ctx, domain, email)
	case PortOccupiedByProxy:
		err = c.arbiter.WithProxyStopped(ctx, func(ctx context.Context) error {
			certPEM, keyPEM, err = c.runChallenge(ctx, domain, email)
			return err
		})
		return certPEM, keyPEM, err
	case PortOccupiedByOther:
		return nil, nil, fmt.Errorf("%w: port %d", ErrPortContention, c.arbiter.port)
	default:
		return nil, nil, fmt.Errorf("%w: unknown port state %d", ErrUnavailable, state)
	}
}

func (c *Client) runChallenge(ctx context.Context, domain, email string) ([]byte, []byte, error) {
	accountKey, err := c.accountKeyMaker()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generate account key: %w", ErrUnavailable, err)
	}

	user := &accountUser{email: email, key: accountKey}
	legoCfg := lego.NewConfig(user)
	legoCfg.CADirURL = c.caDirURL
	legoCfg.Certificate.KeyType = c.keyType

	client, err := c.clientFactory(legoCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create client: %w", ErrUnavailable, err)
	}

	provider := http01.NewProviderServer(c.httpHost, strconv.Itoa(c.arbiter.port))
	if err := client.SetHTTP01Provider(provider); err != nil {
		return nil, nil, fmt.Errorf("%w: configure http-01 provider: %w", ErrUnavailable, err)
	}

	reg, err := client.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: register account: %w", ErrUnavailable, err)
	}
	user.registration = reg

	// The obtain call has no context plumbing of its own; run it under the
	// challenge deadline so the proxy outage window stays bounded.
	type obtainResult struct {
		res *certificate.Resource
		err error
	}
	done := make(chan obtainResult, 1)
	go func() {
		res, err := client.Obtain(certificate.ObtainRequest{
			Domains: []string{domain},
			Bundle:  true,
		})
		done <- obtainResult{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w: %w", ErrChallengeFailed, ctx.Err())
	case result := <-done:
		if result.err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrChallengeFailed, result.err)
		}
		if result.res == nil || len(result.res.Certificate) == 0 || len(result.res.PrivateKey) == 0 {
			return nil, nil, fmt.Errorf("%w: empty certificate payload from CA", ErrChallengeFailed)
		}
		return result.res.Certificate, result.res.PrivateKey, nil
	}
}

type clientFactory func(*lego.Config) (acmeClient, error)

type acmeClient interface {
	Register(options registration.RegisterOptions) (*registration.Resource, error)
	SetHTTP01Provider(provider challenge.Provider) error
	Obtain(request certificate.ObtainRequest) (*certificate.Resource, error)
}

func defaultClientFactory(cfg *lego.Config) (acmeClient, error) {
	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &legoClientAdapter{client: client}, nil
}

type legoClientAdapter struct {
	client *lego.Client
}

func (l *legoClientAdapter) Register(options registration.RegisterOptions) (*registration.Resource, error) {
	return l.client.Registration.Register(options)
}

func (l *legoClientAdapter) SetHTTP01Provider(provider challenge.Provider) error {
	return l.client.Challenge.SetHTTP01Provider(provider)
}

func (l *legoClientAdapter) Obtain(request certificate.ObtainRequest) (*certificate.Resource, error) {
	return l.client.Certificate.Obtain(request)
}

type accountUser struct {
	email        string
	registration *registration.Resource
	key          crypto.PrivateKey
}

func (u *accountUser) GetEmail() string                          { return u.email }
func (u *accountUser) GetRegistration() *registration.Resource   { return u.registration }
func (u *accountUser) GetPrivateKey() crypto.PrivateKey          { return u.key }
