// Package container defines the Runtime interface the certificate lifecycle
// uses to talk to a container engine, together with a docker CLI
// implementation. The interface is intentionally narrow: state queries,
// stop/start/restart of the managed reverse proxy, signaling, and copying
// files into a running container. Nothing in this package ever starts a
// container on its own initiative.
package container
