package acme

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"

	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubACMEClient struct {
	obtainErr error
	obtained  []string
}

func (s *stubACMEClient) Register(registration.RegisterOptions) (*registration.Resource, error) {
	return &registration.Resource{}, nil
}

func (s *stubACMEClient) SetHTTP01Provider(challenge.Provider) error { return nil }

func (s *stubACMEClient) Obtain(req certificate.ObtainRequest) (*certificate.Resource, error) {
	s.obtained = append(s.obtained, req.Domains...)
	if s.obtainErr != nil {
		return nil, s.obtainErr
	}
	return &certificate.Resource{
		Certificate: []byte("issued-cert"),
		PrivateKey:  []byte("issued-key"),
	}, nil
}

type stubRuntime struct {
	running   bool
	publishes bool
	calls     []string
}

func (s *stubRuntime) IsRunning(context.Context, string) (bool, error) {
	return s.running, nil
}

func (s *stubRuntime) PublishesPort(context.Context, string, int) (bool, error) {
	return s.publishes, nil
}

func (s *stubRuntime) Stop(context.Context, string) error {
	s.calls = append(s.calls, "stop")
	return nil
}

func (s *stubRuntime) Start(context.Context, string) error {
	s.calls = append(s.calls, "start")
	return nil
}

func (s *stubRuntime) Restart(context.Context, string) error { return nil }

func (s *stubRuntime) Signal(context.Context, string, string) error { return nil }

func (s *stubRuntime) CopyTo(context.Context, string, string, []byte, os.FileMode) error {
	return nil
}

func (s *stubRuntime) ReadFile(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func newStubbedClient(t *testing.T, arbiter *Arbiter, stub *stubACMEClient) *Client {
	t.Helper()
	client := NewClient(arbiter)
	client.clientFactory = func(*lego.Config) (acmeClient, error) {
		return stub, nil
	}
	return client
}

func reservePort(t *testing.T, hold bool) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	if hold {
		t.Cleanup(func() { _ = ln.Close() })
	} else {
		require.NoError(t, ln.Close())
	}
	return port
}

func TestObtainValidation(t *testing.T) {
	t.Parallel()
	arbiter := NewArbiter(&stubRuntime{}, "proxy", reservePort(t, false), nil)
	client := newStubbedClient(t, arbiter, &stubACMEClient{})

	_, _, err := client.Obtain(context.Background(), "", "a@b.c")
	assert.ErrorIs(t, err, ErrDomainRequired)

	_, _, err = client.Obtain(context.Background(), "example.com", "")
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestObtainFreePort(t *testing.T) {
	t.Parallel()
	rt := &stubRuntime{}
	arbiter := NewArbiter(rt, "proxy", reservePort(t, false), nil)
	stub := &stubACMEClient{}
	client := newStubbedClient(t, arbiter, stub)

	certPEM, keyPEM, err := client.Obtain(context.Background(), "example.com", "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("issued-cert"), certPEM)
	assert.Equal(t, []byte("issued-key"), keyPEM)
	assert.Equal(t, []string{"example.com"}, stub.obtained)

	// The proxy was never touched on a free port.
	assert.Empty(t, rt.calls)
}

func TestObtainStopsAndRestartsProxy(t *testing.T) {
	t.Parallel()
	rt := &stubRuntime{running: true, publishes: true}
	arbiter := NewArbiter(rt, "proxy", reservePort(t, true), nil)
	stub := &stubACMEClient{}
	client := newStubbedClient(t, arbiter, stub)

	_, _, err := client.Obtain(context.Background(), "example.com", "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"stop", "start"}, rt.calls)
}

func TestObtainRestartsProxyOnChallengeFailure(t *testing.T) {
	t.Parallel()
	rt := &stubRuntime{running: true, publishes: true}
	arbiter := NewArbiter(rt, "proxy", reservePort(t, true), nil)
	stub := &stubACMEClient{obtainErr: errors.New("authorization failed")}
	client := newStubbedClient(t, arbiter, stub)

	_, _, err := client.Obtain(context.Background(), "example.com", "ops@example.com")
	assert.ErrorIs(t, err, ErrChallengeFailed)

	// Restart is unconditional: the stack must not stay down because the
	// challenge failed.
	assert.Equal(t, []string{"stop", "start"}, rt.calls)
}

func TestObtainPortContention(t *testing.T) {
	t.Parallel()
	rt := &stubRuntime{running: false}
	arbiter := NewArbiter(rt, "proxy", reservePort(t, true), nil)
	client := newStubbedClient(t, arbiter, &stubACMEClient{})

	_, _, err := client.Obtain(context.Background(), "example.com", "ops@example.com")
	assert.ErrorIs(t, err, ErrPortContention)
	assert.Empty(t, rt.calls)
}
