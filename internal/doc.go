// Package internal holds engine-private helpers shared across the authflow
// root package and its bundled backends: cryptographically random OTP code
// generation and challenge hashing.
//
// Nothing in this package may import the root package or any sibling.
package internal
