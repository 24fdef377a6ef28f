// Package certcheck inspects certificate/key pairs: structural parsing,
// key-pair match via public key digest comparison, domain applicability
// against the Common Name and SAN entries, and a three-way expiry
// classification (healthy / warning / expired) against a configurable
// threshold.
//
// Validation never fails with an error. Missing or corrupt material is an
// answer (StructurallyValid=false), not an exception, so callers can branch
// on the result without error plumbing.
package certcheck
