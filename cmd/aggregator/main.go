// Command aggregator runs the standalone aggregation server.
//
// The aggregator stages report triples for one epoch and recovers the
// measurements whose tag groups reach the configured threshold. Staged
// triples live in memory by default, or in PostgreSQL when a postgres
// section is present in the config file.
//
// # Configuration File
//
// Create a YAML file with aggregator settings:
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
// # Usage
//
//	go run ./cmd/aggregator --config=aggregator.yaml
//	go run ./cmd/aggregator --addr=:8081 --epoch=2026-08 --threshold=20
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rillian/sta-rs/api/httpserver"
	"github.com/rillian/sta-rs/cmd/common"
	"github.com/rillian/sta-rs/protocol"
	"github.com/rillian/sta-rs/services"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		addr        = flag.String("addr", "", "HTTP listen address")
		metricsAddr = flag.String("metrics-addr", "", "Metrics listen address (empty disables)")
		epoch       = flag.String("epoch", "", "Epoch tag this aggregator accepts")
		threshold   = flag.Uint("threshold", 0, "Share count required to recover a measurement")
		adminToken  = flag.String("admin-token", "", "Bearer token for the purge endpoint")
		pprof       = flag.Bool("pprof", false, "Enable pprof debug API")
		logJSON     = flag.Bool("log-json", false, "Log in JSON format")
		logDebug    = flag.Bool("log-debug", false, "Log at debug level")
	)
	flag.Parse()

	cfg := common.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = common.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Command-line flags override config file
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *epoch != "" {
		cfg.Epoch = *epoch
	}
	if *threshold != 0 {
		cfg.Threshold = uint32(*threshold)
	}
	if *adminToken != "" {
		cfg.AdminToken = *adminToken
	}
	if *pprof {
		cfg.EnablePprof = true
	}
	if *logJSON {
		cfg.LogJSON = true
	}
	if *logDebug {
		cfg.LogDebug = true
	}

	log := common.NewLogger(cfg.LogJSON, cfg.LogDebug)

	aggregationServer, err := protocol.NewAggregationServer(cfg.Threshold, cfg.Epoch)
	if err != nil {
		log.Error("Creating aggregation server failed", "err", err)
		os.Exit(1)
	}

	store, err := common.NewTripleStore(cfg)
	if err != nil {
		log.Error("Creating triple store failed", "err", err)
		os.Exit(1)
	}
	if cfg.Postgres != nil {
		log.Info("Using PostgreSQL triple store", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	} else {
		log.Info("Using in-memory triple store")
	}

	handler := services.NewHTTPAggregator(aggregationServer, store, cfg.AdminToken, log)

	srv, err := httpserver.New(common.NewServerConfig(cfg, log), handler)
	if err != nil {
		log.Error("Creating HTTP server failed", "err", err)
		os.Exit(1)
	}
	log.Info("Aggregator started", "epoch", cfg.Epoch, "threshold", cfg.Threshold)
	srv.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down aggregator")
	srv.Shutdown()
	if closer, ok := store.(interface{ Close() error }); ok {
		closer.Close()
	}
}
