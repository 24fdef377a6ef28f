// Package certstore is the single source of truth for certificate and key
// file locations, metadata persistence, and backup rotation.
//
// The on-disk layout under the configured SSL root is fixed:
//
//	<root>/<name>.crt                      PEM certificate (0644)
//	<root>/<name>.key                      PEM private key (0600)
//	<root>/.cert_info                      key=value metadata record
//	<root>/backup/<name>.{crt,key}.<ts>    append-only backup copies
//
// Writes are atomic from the caller's perspective: both files are staged
// under temporary names and only exposed under their canonical names
// together, or the existing state is left untouched. An advisory file lock
// (Lock/Unlock) guards the backup/write/remove sequence against concurrent
// invocations from other processes.
package certstore
