// Package resolver is the decision engine of the certificate lifecycle.
// Given the current store state, a requested acquisition mode, and a
// domain, it picks and orchestrates the acquisition path: preserve an
// existing bundle, generate a self-signed one, obtain a publicly-trusted
// one via ACME, install caller-supplied files, or remove TLS entirely.
//
// Safety invariants enforced here:
//
//   - every transition holds the store's advisory lock end to end;
//   - backup always precedes any destructive write;
//   - ACME failures in auto mode degrade to self-signed, and the downgrade
//     is always logged;
//   - a failed import leaves the store byte-for-byte untouched.
package resolver
