package inject

import "errors"

var (
	// ErrContainerNotRunning is returned when the target container is not
	// running. Starting containers is outside this component's authority.
	ErrContainerNotRunning = errors.New("target container is not running")

	// ErrInjectionFailed is returned when copying, reloading, or the
	// in-container post-validation fails. The bundle on disk remains valid;
	// only the live propagation is deferred.
	ErrInjectionFailed = errors.New("certificate injection failed")
)
