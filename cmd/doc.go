// Package cmd provides the CLI commands for the STAR services.
//
// # Commands
//
// randomness: Serves per-epoch puncturable OPRF evaluations to reporting
// clients and exposes the admin puncture endpoint.
//
//	go run ./cmd/randomness --addr=:8080 --epochs=2026-08,2026-09 --admin-token=secret
//
// aggregator: Stages report triples for one epoch and recovers the
// measurements whose groups reach the threshold.
//
//	go run ./cmd/aggregator --addr=:8081 --epoch=2026-08 --threshold=20
//
// demo-cli: Simulates client populations, submits triples, fetches
// aggregation results, and punctures epochs.
//
//	go run ./cmd/demo-cli simulate --clients=1000 --threshold=20
//	go run ./cmd/demo-cli submit --randomness=http://localhost:8080 --aggregator=http://localhost:8081
//
// # Configuration
//
// The service commands support YAML configuration files via the --config
// flag. Command-line flags override config file values.
//
// Example config for the aggregator:
//
//	http_addr: ":8081"
//	metrics_addr: ":9091"
//	admin_token: "secret"
//	epoch: "2026-08"
//	threshold: 20
//	postgres:
//	  host: "localhost"
//	  port: 5432
//	  user: "star"
//	  password: "star"
//	  database: "star"
//
// Omitting the postgres section keeps staged triples in memory.
package cmd
