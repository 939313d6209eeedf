// Package metrics exposes Prometheus-compatible counters and the
// standalone metrics HTTP server used by the service binaries.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	vmetrics "github.com/VictoriaMetrics/metrics"
)

// Counters shared by the HTTP services. Registered in the default set so
// they appear on every /metrics endpoint.
var (
	RandomnessEvaluations = vmetrics.NewCounter("star_randomness_evaluations_total")
	RandomnessRejects     = vmetrics.NewCounter("star_randomness_rejects_total")
	EpochPunctures        = vmetrics.NewCounter("star_epoch_punctures_total")
	TriplesAccepted       = vmetrics.NewCounter("star_triples_accepted_total")
	TriplesRejected       = vmetrics.NewCounter("star_triples_rejected_total")
	AggregationRuns       = vmetrics.NewCounter("star_aggregation_runs_total")
	AggregationFailures   = vmetrics.NewCounter("star_aggregation_group_failures_total")
)

// MetricsServer serves the default metrics set over HTTP.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service name and listen
// address. An empty address is allowed; the returned server then only
// carries the process-wide counters and ListenAndServe must not be called.
func New(name, addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Service-Name", name)
		vmetrics.WritePrometheus(w, true)
	})

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving the /metrics endpoint.
func (m *MetricsServer) ListenAndServe() error {
	if m.srv.Addr == "" {
		return fmt.Errorf("metrics server has no listen address")
	}
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
