package acme

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/devmatic-io/certmate/core/container"
	"github.com/devmatic-io/certmate/core/logger"
)

// PortState classifies the occupancy of the challenge port.
type PortState int

const (
	// PortFree means nothing listens on the port; the challenge can run
	// directly.
	PortFree PortState = iota
	// PortOccupiedByProxy means the managed reverse-proxy container holds
	// the port and may be stopped for the duration of the challenge.
	PortOccupiedByProxy
	// PortOccupiedByOther means an unrelated process holds the port.
	// Unrelated services are never stopped.
	PortOccupiedByOther
)

// String returns the state name for logs.
func (s PortState) String() string {
	switch s {
	case PortFree:
		return "free"
	case PortOccupiedByProxy:
		return "occupied-by-proxy"
	case PortOccupiedByOther:
		return "occupied-by-other"
	default:
		return "unknown"
	}
}

// Arbiter decides who holds the challenge port and manages the
// stop-challenge-restart critical section around the managed proxy.
type Arbiter struct {
	runtime   container.Runtime
	proxyName string
	port      int
	log       *slog.Logger
}

// NewArbiter creates an Arbiter for the named proxy container and port.
func NewArbiter(runtime container.Runtime, proxyName string, port int, log *slog.Logger) *Arbiter {
	if log == nil {
		log = slog.Default()
	}
	return &Arbiter{
		runtime:   runtime,
		proxyName: proxyName,
		port:      port,
		log:       log,
	}
}

// Probe classifies the current occupancy of the challenge port.
//
// The occupant is attributed to the managed proxy only when that exact
// container is running and publishes the port. Any other occupant,
// including a runtime query failure, is classified as unrelated: it is
// never safe to assume an unknown process may be stopped.
func (a *Arbiter) Probe(ctx context.Context) (PortState, error) {
	ln, err := net.Listen("tcp", addrForPort(a.port))
	if err == nil {
		_ = ln.Close()
		return PortFree, nil
	}
	if isPermissionError(err) {
		return PortOccupiedByOther, fmt.Errorf("%w: cannot bind port %d: %w", ErrUnavailable, a.port, err)
	}

	if a.runtime == nil || a.proxyName == "" {
		return PortOccupiedByOther, nil
	}

	running, err := a.runtime.IsRunning(ctx, a.proxyName)
	if err != nil || !running {
		return PortOccupiedByOther, nil
	}
	publishes, err := a.runtime.PublishesPort(ctx, a.proxyName, a.port)
	if err != nil || !publishes {
		return PortOccupiedByOther, nil
	}

	return PortOccupiedByProxy, nil
}

// WithProxyStopped stops the managed proxy, runs fn, and restarts the proxy
// on every exit path including panics and context cancellation. The
// application stack is briefly unreachable during fn; the guaranteed
// restart bounds that window.
func (a *Arbiter) WithProxyStopped(ctx context.Context, fn func(context.Context) error) error {
	a.log.Info("stopping reverse proxy for challenge",
		logger.Component("acme"),
		logger.Container(a.proxyName),
	)
	if err := a.runtime.Stop(ctx, a.proxyName); err != nil {
		return fmt.Errorf("%w: stop proxy %s: %w", ErrUnavailable, a.proxyName, err)
	}

	defer func() {
		// The restart must not inherit the challenge deadline: a timed-out
		// challenge still ends with the proxy back up.
		restartCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 60*time.Second)
		defer cancel()
		if err := a.runtime.Start(restartCtx, a.proxyName); err != nil {
			a.log.Error("failed to restart reverse proxy after challenge",
				logger.Component("acme"),
				logger.Container(a.proxyName),
				logger.Error(err),
			)
			return
		}
		a.log.Info("reverse proxy restarted",
			logger.Component("acme"),
			logger.Container(a.proxyName),
		)
	}()

	return fn(ctx)
}

func addrForPort(port int) string {
	return fmt.Sprintf(":%d", port)
}
