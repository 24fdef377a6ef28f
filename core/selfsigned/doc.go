// Package selfsigned generates locally-trusted certificate/key pairs for a
// domain. Two profiles exist: Development (2048-bit key, short validity,
// logged warning) for localhost work, and Production (4096-bit key, one
// year) for real domains that cannot or should not use ACME.
package selfsigned
