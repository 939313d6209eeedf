package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rillian/sta-rs/metrics"
	"github.com/rillian/sta-rs/protocol"
)

// HTTPAggregator accepts report triples for one epoch and serves
// aggregation results over the staged batch.
type HTTPAggregator struct {
	aggregator *protocol.AggregationServer
	store      TripleStore
	adminToken string
	log        *slog.Logger
}

// NewHTTPAggregator wraps an aggregation server and a triple store for
// HTTP serving.
func NewHTTPAggregator(aggregator *protocol.AggregationServer, store TripleStore, adminToken string, log *slog.Logger) *HTTPAggregator {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPAggregator{aggregator: aggregator, store: store, adminToken: adminToken, log: log}
}

// RegisterRoutes registers HTTP routes for the aggregator.
func (h *HTTPAggregator) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Recoverer)

	r.Post("/triples", h.handleSubmitTriple)
	r.Get("/outputs", h.handleOutputs)
	r.Post("/purge", h.handlePurge)
}

func (h *HTTPAggregator) handleSubmitTriple(w http.ResponseWriter, r *http.Request) {
	var triple protocol.Triple
	if err := json.NewDecoder(r.Body).Decode(&triple); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(triple.Tag) == 0 || len(triple.Share) == 0 {
		metrics.TriplesRejected.Inc()
		http.Error(w, "triple must carry a tag and a share", http.StatusBadRequest)
		return
	}
	if triple.Epoch != h.aggregator.Epoch() {
		metrics.TriplesRejected.Inc()
		http.Error(w, "triple is for a different epoch", http.StatusConflict)
		return
	}

	if err := h.store.SaveTriple(r.Context(), &triple); err != nil {
		h.log.Error("staging triple failed", "err", err)
		http.Error(w, "could not store triple", http.StatusInternalServerError)
		return
	}

	metrics.TriplesAccepted.Inc()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SubmitResponse{Accepted: true})
}

func (h *HTTPAggregator) handleOutputs(w http.ResponseWriter, r *http.Request) {
	triples, err := h.store.LoadTriples(r.Context(), h.aggregator.Epoch())
	if err != nil {
		h.log.Error("loading staged triples failed", "err", err)
		http.Error(w, "could not load triples", http.StatusInternalServerError)
		return
	}

	result, err := h.aggregator.RetrieveOutputs(r.Context(), triples)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.AggregationRuns.Inc()
	metrics.AggregationFailures.Add(len(result.Failures))
	h.log.Info("aggregation complete",
		"epoch", h.aggregator.Epoch(),
		"triples", len(triples),
		"outputs", len(result.Outputs),
		"failures", len(result.Failures))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *HTTPAggregator) handlePurge(w http.ResponseWriter, r *http.Request) {
	if h.adminToken == "" || r.Header.Get("Authorization") != "Bearer "+h.adminToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.store.PurgeEpoch(r.Context(), h.aggregator.Epoch()); err != nil {
		http.Error(w, "could not purge epoch", http.StatusInternalServerError)
		return
	}

	h.log.Info("epoch purged", "epoch", h.aggregator.Epoch())
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"purged":true}`))
}
