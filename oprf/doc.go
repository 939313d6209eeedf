// Package oprf implements the puncturable oblivious pseudorandom
// function service used for epoch-scoped randomness tagging.
//
// The server holds one secret key per named epoch tag and evaluates the
// PRF on client-supplied ristretto points without learning the
// underlying input (the client hashes its measurement to the curve and
// only ever sends points). Two properties matter for the protocol:
//
//   - Obliviousness: the server sees only curve points, never
//     measurements.
//   - Puncturing: once an epoch's aggregation window closes, the
//     operator punctures that epoch's key. Evaluation for the epoch then
//     fails closed, giving forward secrecy for closed epochs even if the
//     server's remaining key material later leaks.
//
// Evaluations can optionally carry a DLEQ proof of correct evaluation
// against the epoch's published public key.
//
// The package also exposes a handle-based boundary (Create, Release,
// Evaluate, Puncture) for embedders that need an opaque service
// reference instead of a Go object.
package oprf
