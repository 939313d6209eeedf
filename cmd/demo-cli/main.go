// Command star provides CLI tools for exercising a STAR deployment.
//
// # Commands
//
// simulate: Run a full local round. A population of clients with
// Zipf-distributed measurements produces report triples, and the
// aggregation pass recovers everything above the threshold.
//
//	star simulate --clients=1000 --threshold=20
//
// submit: Generate triples against a running randomness server and submit
// them to an aggregator.
//
//	star submit --randomness=http://localhost:8080 --aggregator=http://localhost:8081 --clients=100
//
// outputs: Fetch and print the aggregation result for the current epoch.
//
//	star outputs --aggregator=http://localhost:8081
//
// puncture: Retire an epoch on the randomness server.
//
//	star puncture --randomness=http://localhost:8080 --epoch=2026-08 --admin-token=secret
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rillian/sta-rs/oprf"
	"github.com/rillian/sta-rs/protocol"
	"github.com/rillian/sta-rs/services"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "simulate":
		err = runSimulate(args)
	case "submit":
		err = runSubmit(args)
	case "outputs":
		err = runOutputs(args)
	case "puncture":
		err = runPuncture(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`star - CLI tools for STAR threshold aggregation

Usage:
  star <command> [options]

Commands:
  simulate   Run a full local round with simulated clients
  submit     Generate triples and submit them to an aggregator
  outputs    Fetch the aggregation result
  puncture   Retire an epoch on the randomness server

Run 'star <command> --help' for command-specific options.`)
}

// --- Simulate Command ---

func runSimulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	var (
		clients    = fs.Int("clients", 1000, "Number of simulated clients")
		categories = fs.Uint64("categories", 100, "Number of distinct measurements")
		exponent   = fs.Float64("zipf-s", 1.03, "Zipf distribution exponent")
		threshold  = fs.Uint("threshold", 20, "Recovery threshold")
		epoch      = fs.String("epoch", "demo-epoch", "Epoch tag")
		oblivious  = fs.Bool("oblivious", false, "Use an in-process OPRF server for tags")
	)
	fs.Parse(args)

	var source protocol.RandomnessSource
	if *oblivious {
		server, err := oprf.NewServer([][]byte{[]byte(*epoch)})
		if err != nil {
			return fmt.Errorf("creating OPRF server: %w", err)
		}
		source = &protocol.LocalSource{Server: server}
	}

	ctx := context.Background()
	start := time.Now()
	triples := make([]*protocol.Triple, 0, *clients)
	for i := 0; i < *clients; i++ {
		client, err := protocol.NewZipfClient(*categories, *exponent, uint32(*threshold), *epoch, nil, int64(i), nil)
		if err != nil {
			return fmt.Errorf("creating client %d: %w", i, err)
		}
		triple, err := protocol.GenerateTriple(ctx, client, source)
		if err != nil {
			return fmt.Errorf("generating triple %d: %w", i, err)
		}
		triples = append(triples, triple)
	}
	genElapsed := time.Since(start)

	aggregationServer, err := protocol.NewAggregationServer(uint32(*threshold), *epoch)
	if err != nil {
		return fmt.Errorf("creating aggregation server: %w", err)
	}

	start = time.Now()
	result, err := aggregationServer.RetrieveOutputs(ctx, triples)
	if err != nil {
		return fmt.Errorf("aggregating: %w", err)
	}
	aggElapsed := time.Since(start)

	recovered := 0
	for _, output := range result.Outputs {
		fmt.Printf("%6d  %s\n", output.Count, output.Measurement)
		recovered += output.Count
	}
	fmt.Printf("\nClients:    %d (triples in %s)\n", *clients, genElapsed.Round(time.Millisecond))
	fmt.Printf("Recovered:  %d measurements across %d groups (in %s)\n",
		recovered, len(result.Outputs), aggElapsed.Round(time.Millisecond))
	fmt.Printf("Hidden:     %d reports below threshold %d\n", *clients-recovered, *threshold)
	if len(result.Failures) > 0 {
		fmt.Printf("Failures:   %d groups\n", len(result.Failures))
	}
	return nil
}

// --- Submit Command ---

func runSubmit(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	var (
		randomnessURL = fs.String("randomness", "", "Randomness server URL (empty uses local tags)")
		aggregatorURL = fs.String("aggregator", "http://localhost:8081", "Aggregator URL")
		clients       = fs.Int("clients", 100, "Number of simulated clients")
		categories    = fs.Uint64("categories", 50, "Number of distinct measurements")
		exponent      = fs.Float64("zipf-s", 1.03, "Zipf distribution exponent")
		threshold     = fs.Uint("threshold", 20, "Recovery threshold")
		epoch         = fs.String("epoch", "demo-epoch", "Epoch tag")
	)
	fs.Parse(args)

	var source protocol.RandomnessSource
	if *randomnessURL != "" {
		source = services.NewRandomnessClient(*randomnessURL)
	}

	ctx := context.Background()
	submitted := 0
	for i := 0; i < *clients; i++ {
		client, err := protocol.NewZipfClient(*categories, *exponent, uint32(*threshold), *epoch, nil, int64(i), nil)
		if err != nil {
			return fmt.Errorf("creating client %d: %w", i, err)
		}
		triple, err := protocol.GenerateTriple(ctx, client, source)
		if err != nil {
			return fmt.Errorf("generating triple %d: %w", i, err)
		}
		if err := postJSON(*aggregatorURL+"/triples", triple); err != nil {
			return fmt.Errorf("submitting triple %d: %w", i, err)
		}
		submitted++
	}

	fmt.Printf("Submitted %d triples for epoch %q to %s\n", submitted, *epoch, *aggregatorURL)
	return nil
}

// --- Outputs Command ---

func runOutputs(args []string) error {
	fs := flag.NewFlagSet("outputs", flag.ExitOnError)
	aggregatorURL := fs.String("aggregator", "http://localhost:8081", "Aggregator URL")
	fs.Parse(args)

	resp, err := http.Get(*aggregatorURL + "/outputs")
	if err != nil {
		return fmt.Errorf("fetching outputs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("aggregator returned status %d: %s", resp.StatusCode, body)
	}

	var result protocol.AggregationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}

	for _, output := range result.Outputs {
		fmt.Printf("%6d  %s\n", output.Count, output.Measurement)
	}
	fmt.Printf("\n%d groups recovered, %d failures, %d epoch mismatches\n",
		len(result.Outputs), len(result.Failures), result.EpochMismatches)
	for _, failure := range result.Failures {
		fmt.Printf("  failed %s (%d shares): %s\n", failure.Tag, failure.Shares, failure.Reason)
	}
	return nil
}

// --- Puncture Command ---

func runPuncture(args []string) error {
	fs := flag.NewFlagSet("puncture", flag.ExitOnError)
	var (
		randomnessURL = fs.String("randomness", "http://localhost:8080", "Randomness server URL")
		epoch         = fs.String("epoch", "", "Epoch tag to puncture")
		adminToken    = fs.String("admin-token", "", "Bearer token for the puncture endpoint")
	)
	fs.Parse(args)

	if *epoch == "" {
		return fmt.Errorf("--epoch is required")
	}

	body, err := json.Marshal(services.PunctureRequest{Epoch: *epoch})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, *randomnessURL+"/puncture", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+*adminToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("puncturing epoch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("randomness server returned status %d: %s", resp.StatusCode, respBody)
	}

	fmt.Printf("Epoch %q punctured\n", *epoch)
	return nil
}

func postJSON(url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
