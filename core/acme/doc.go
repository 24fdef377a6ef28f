// Package acme obtains publicly-trusted certificates through the ACME
// HTTP-01 challenge, built on go-acme/lego.
//
// Its distinguishing concern is port arbitration: the challenge needs the
// HTTP port, which in a running stack is usually held by the managed
// reverse-proxy container. The Arbiter classifies the occupant (free /
// managed proxy / unrelated process), stops the proxy only when it is
// provably the managed one, and guarantees the restart on every exit path.
// An unrelated occupant always aborts the attempt; this package never stops
// a process it does not own.
//
// The Client itself never falls back to self-signed generation. That
// decision belongs to the resolver, which can report the downgrade.
package acme
