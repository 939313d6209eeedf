package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillian/sta-rs/protocol"
)

func setupAggregatorRouter(t *testing.T, threshold uint32, epoch string) (chi.Router, *MemoryStore) {
	t.Helper()
	aggregator, err := protocol.NewAggregationServer(threshold, epoch)
	require.NoError(t, err)
	store := NewMemoryStore()

	r := chi.NewRouter()
	NewHTTPAggregator(aggregator, store, "admin-secret", nil).RegisterRoutes(r)
	return r, store
}

// pointReader pins a client's share evaluation point so batches built
// from independent clients never lose shares to point collisions.
type pointReader byte

func (r pointReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}

func makeTriple(t *testing.T, measurement, epoch string, threshold uint32, point byte) *protocol.Triple {
	t.Helper()
	client, err := protocol.NewClient(protocol.StaticSampler(measurement), threshold, epoch, nil, pointReader(point))
	require.NoError(t, err)
	triple, err := protocol.GenerateTriple(context.Background(), client, nil)
	require.NoError(t, err)
	return triple
}

func TestAggregatorGreenPath(t *testing.T) {
	const k = 3
	r, _ := setupAggregatorRouter(t, k, "epoch-1")

	// k independent reports of the same measurement, one below-threshold
	// straggler
	for i := 0; i < k; i++ {
		w := postJSON(t, r, "/triples", makeTriple(t, "popular", "epoch-1", k, byte(i+1)), "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := postJSON(t, r, "/triples", makeTriple(t, "rare", "epoch-1", k, 1), "")
	require.Equal(t, http.StatusOK, w.Code)

	req, err := http.NewRequest("GET", "/outputs", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result protocol.AggregationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, []byte("popular"), result.Outputs[0].Measurement)
	assert.Equal(t, k, result.Outputs[0].Count)
}

func TestAggregatorRejectsBadSubmissions(t *testing.T) {
	r, _ := setupAggregatorRouter(t, 2, "epoch-1")

	// Wrong epoch
	w := postJSON(t, r, "/triples", makeTriple(t, "m", "epoch-2", 2, 1), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Missing share
	w = postJSON(t, r, "/triples", &protocol.Triple{Tag: []byte{1}, Epoch: "epoch-1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAggregatorPurge(t *testing.T) {
	const k = 2
	r, store := setupAggregatorRouter(t, k, "epoch-1")

	for i := 0; i < k; i++ {
		w := postJSON(t, r, "/triples", makeTriple(t, "m", "epoch-1", k, byte(i+1)), "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := postJSON(t, r, "/purge", struct{}{}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, r, "/purge", struct{}{}, "admin-secret")
	require.Equal(t, http.StatusOK, w.Code)

	staged, err := store.LoadTriples(context.Background(), "epoch-1")
	require.NoError(t, err)
	require.Empty(t, staged)
}
