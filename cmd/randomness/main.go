// Command randomness runs the standalone randomness server.
//
// The server holds one puncturable OPRF key per configured epoch and
// evaluates blinded points submitted by reporting clients. Past epochs can
// be punctured through the admin endpoint, after which their randomness is
// unrecoverable even if the server state leaks.
//
// # Configuration File
//
// Create a YAML file with server settings:
//
//	http_addr: ":8080"
//	metrics_addr: ":9090"
//	admin_token: "secret"
//	epochs:
//	  - "2026-08"
//	  - "2026-09"
//
// # Usage
//
//	go run ./cmd/randomness --config=randomness.yaml
//	go run ./cmd/randomness --addr=:8080 --epochs=2026-08,2026-09
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rillian/sta-rs/api/httpserver"
	"github.com/rillian/sta-rs/cmd/common"
	"github.com/rillian/sta-rs/oprf"
	"github.com/rillian/sta-rs/services"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		addr        = flag.String("addr", "", "HTTP listen address")
		metricsAddr = flag.String("metrics-addr", "", "Metrics listen address (empty disables)")
		epochsFlag  = flag.String("epochs", "", "Comma-separated epoch tags to serve")
		adminToken  = flag.String("admin-token", "", "Bearer token for the puncture endpoint")
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
	if *epochsFlag != "" {
		cfg.Epochs = strings.Split(*epochsFlag, ",")
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

	if len(cfg.Epochs) == 0 {
		log.Error("At least one epoch tag is required")
		os.Exit(1)
	}

	tags := make([][]byte, len(cfg.Epochs))
	for i, epoch := range cfg.Epochs {
		tags[i] = []byte(epoch)
	}

	oprfServer, err := oprf.NewServer(tags)
	if err != nil {
		log.Error("Creating OPRF server failed", "err", err)
		os.Exit(1)
	}
	log.Info("OPRF keys generated", "epochs", len(tags))

	handler := services.NewHTTPRandomness(oprfServer, cfg.AdminToken, log)

	srv, err := httpserver.New(common.NewServerConfig(cfg, log), handler)
	if err != nil {
		log.Error("Creating HTTP server failed", "err", err)
		os.Exit(1)
	}
	srv.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down randomness server")
	srv.Shutdown()
}
