package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rillian/sta-rs/metrics"
	"github.com/rillian/sta-rs/oprf"
)

// HTTPRandomness exposes a puncturable OPRF server over HTTP. Reporting
// clients are typically browsers, so CORS is open for the evaluation
// endpoints; puncturing is gated behind an admin token.
type HTTPRandomness struct {
	server     *oprf.Server
	adminToken string
	log        *slog.Logger
}

// NewHTTPRandomness wraps an OPRF server for HTTP serving.
func NewHTTPRandomness(server *oprf.Server, adminToken string, log *slog.Logger) *HTTPRandomness {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPRandomness{server: server, adminToken: adminToken, log: log}
}

// RegisterRoutes registers HTTP routes for the randomness server.
func (h *HTTPRandomness) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/randomness", h.handleRandomness)
	r.Get("/info", h.handleInfo)
	r.Post("/puncture", h.handlePuncture)
}

func (h *HTTPRandomness) handleRandomness(w http.ResponseWriter, r *http.Request) {
	var req RandomnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Points) == 0 {
		http.Error(w, "no points to evaluate", http.StatusBadRequest)
		return
	}

	idx, err := h.server.TagIndex([]byte(req.Epoch))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	resp := RandomnessResponse{Epoch: req.Epoch, Evaluations: make([]*oprf.Evaluation, len(req.Points))}
	for i, point := range req.Points {
		eval, err := h.server.Evaluate(point, idx, req.Verifiable)
		if err != nil {
			metrics.RandomnessRejects.Inc()
			h.log.Warn("evaluation failed", "epoch", req.Epoch, "err", err)
			http.Error(w, err.Error(), evaluationStatus(err))
			return
		}
		resp.Evaluations[i] = eval
	}
	metrics.RandomnessEvaluations.Add(len(req.Points))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// evaluationStatus maps evaluation failures onto HTTP statuses that the
// randomness client can translate back into protocol errors.
func evaluationStatus(err error) int {
	switch {
	case errors.Is(err, oprf.ErrEpochPunctured):
		return http.StatusGone
	case errors.Is(err, oprf.ErrMalformedPoint):
		return http.StatusBadRequest
	case errors.Is(err, oprf.ErrUnknownTag):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPRandomness) handleInfo(w http.ResponseWriter, r *http.Request) {
	status := h.server.Status()
	info := RandomnessInfo{Epochs: make([]EpochInfo, len(status))}
	for i, epoch := range status {
		info.Epochs[i] = EpochInfo{Tag: string(epoch.Tag), Punctured: epoch.Punctured}
		if !epoch.Punctured {
			publicKey, err := h.server.PublicKey(i)
			if err == nil {
				info.Epochs[i].PublicKey = publicKey
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (h *HTTPRandomness) handlePuncture(w http.ResponseWriter, r *http.Request) {
	if h.adminToken == "" || r.Header.Get("Authorization") != "Bearer "+h.adminToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req PunctureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.server.Puncture([]byte(req.Epoch)); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	metrics.EpochPunctures.Inc()
	h.log.Info("epoch punctured", "epoch", req.Epoch)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"punctured":true}`))
}
