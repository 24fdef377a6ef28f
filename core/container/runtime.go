package container

import (
	"context"
	"os"
)

// Runtime abstracts the container engine this package talks to.
// It covers exactly the operations the certificate lifecycle needs:
// querying state, stopping and starting the managed proxy around an ACME
// challenge, and pushing files into a running container. Implementations
// must never start a container that the caller did not explicitly ask for.
type Runtime interface {
	// IsRunning reports whether the named container is currently running.
	// An unknown container is reported as not running, not as an error.
	IsRunning(ctx context.Context, name string) (bool, error)

	// PublishesPort reports whether the named container publishes the given
	// host TCP port.
	PublishesPort(ctx context.Context, name string, port int) (bool, error)

	// Stop stops a running container.
	Stop(ctx context.Context, name string) error

	// Start starts a stopped container.
	Start(ctx context.Context, name string) error

	// Restart stops and starts a container in one operation.
	Restart(ctx context.Context, name string) error

	// Signal delivers a signal (e.g. "HUP") to the container's main process.
	Signal(ctx context.Context, name, signal string) error

	// CopyTo writes content to a path inside a running container with the
	// given file mode.
	CopyTo(ctx context.Context, name, path string, content []byte, mode os.FileMode) error

	// ReadFile reads a file from inside a running container.
	ReadFile(ctx context.Context, name, path string) ([]byte, error)
}
