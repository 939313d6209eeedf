// Package protocol implements the STAR threshold aggregation protocol:
// clients encode a private measurement into a randomness-tagged secret
// share, and an aggregation server learns a measurement's value only if
// at least threshold distinct clients reported the same value in the
// same epoch.
//
// The protocol has three moving parts:
//
//  1. A client derives a tag for its measurement, either locally
//     (cheap, but the aggregator could retain tag-measurement mappings
//     forever) or through the puncturable OPRF service (oblivious, and
//     forward secret once the epoch's key is punctured).
//  2. The client secret-shares its (measurement, aux) report under the
//     reporting threshold and emits a Triple carrying the tag and a
//     single share.
//  3. The aggregation server groups one epoch's triples by tag and
//     recovers the report for every group that reached the threshold.
//     Groups below the threshold are dropped without learning anything
//     about them; that is the protocol's privacy guarantee in action.
package protocol
