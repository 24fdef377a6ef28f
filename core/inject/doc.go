// Package inject propagates a stored certificate bundle into a running
// reverse-proxy container: copy both files to the container's TLS paths,
// signal a graceful reload (falling back to a restart), then re-validate
// the in-container copies. A failed injection never rolls back the bundle
// on disk; the certificate stays correctly stored even if not yet live.
package inject
