// Package crypto provides the cryptographic primitives for threshold
// aggregation reporting.
//
// This package implements the core operations required by the STAR
// protocol, including:
//
//   - Field arithmetic over a 256-bit prime field (share encoding)
//   - Random polynomial generation and Lagrange interpolation
//   - Threshold secret sharing with an unbounded lazy share stream
//
// The crypto package provides low-level primitives that are used by the
// higher-level protocol implementation.
// Note: not all cryptographic operations are constant-time (in particular
// field and polynomial math).
//
// # Field Operations
//
// All share arithmetic happens modulo ShareFieldOrder, the largest
// 256-bit prime. A field element encodes to exactly FieldElementLen
// bytes; decoding is strict and rejects out-of-range values.
//
// # Secret Sharing
//
// Deal splits a secret into polynomials (one per field-element chunk)
// and returns an Evaluator producing an effectively unbounded stream of
// shares at randomly sampled evaluation points. Recover reconstructs
// the secret from any threshold-sized subset of distinct shares.
package crypto
