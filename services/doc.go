/*
# STAR Services Package

The services package provides HTTP-based implementations of the STAR
protocol components for real-world deployment.

## Overview

This package wraps the core protocol implementation with HTTP APIs,
enabling:
  - RESTful communication between reporting clients and servers
  - Easy deployment and testing
  - Pluggable triple storage (in-memory or PostgreSQL)

## Components

1. **HTTPRandomness** (`http_randomness.go`)
  - Wraps the puncturable OPRF server from the oprf package
  - Endpoints:
  - `POST /randomness` - Batch PRF evaluation over blinded points
  - `GET /info` - Epoch tags and public key commitments
  - `POST /puncture` - Close an epoch (admin-token gated)

2. **HTTPAggregator** (`http_aggregator.go`)
  - Wraps `protocol.AggregationServer` plus a TripleStore
  - Endpoints:
  - `POST /triples` - Submit a report triple for the configured epoch
  - `GET /outputs` - Run aggregation over the stored batch
  - `POST /purge` - Discard the epoch's stored triples (admin)

3. **RandomnessClient** (`randomness_client.go`)
  - HTTP implementation of `protocol.RandomnessSource` used by
    reporting clients against a remote randomness server

4. **TripleStore** (`store.go`, `postgres_store.go`)
  - Epoch-scoped triple staging: in-memory for tests and demos,
    PostgreSQL for deployments

The store holds only transport-staged triples for the open epoch; it is
purged when the epoch closes and never retains tag associations across
epochs.
*/
package services
