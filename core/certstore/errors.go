package certstore

import "errors"

var (
	// ErrNotFound is returned when no complete bundle exists in the store.
	ErrNotFound = errors.New("certificate bundle not found")

	// ErrWriteFailed is returned when the store cannot persist a bundle.
	// It signals a filesystem or permission problem that must surface to
	// the operator.
	ErrWriteFailed = errors.New("certificate store write failed")

	// ErrRootRequired is returned when the store is created without a root directory.
	ErrRootRequired = errors.New("store root directory is required")

	// ErrNameRequired is returned when the store is created without a bundle name.
	ErrNameRequired = errors.New("bundle name is required")
)
