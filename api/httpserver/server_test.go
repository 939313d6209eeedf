package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
}

func newTestServer(t *testing.T, registrars ...RouteRegistrar) *BaseServer {
	t.Helper()
	cfg := &HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      slog.New(slog.NewTextHandler(io.Discard, nil)),
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}
	srv, err := New(cfg, registrars...)
	require.NoError(t, err)
	return srv
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusOK, get(srv.srv.Handler, "/livez").Code)
	require.Equal(t, http.StatusOK, get(srv.srv.Handler, "/readyz").Code)
}

func TestDrainTogglesReadiness(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusOK, get(srv.srv.Handler, "/drain").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(srv.srv.Handler, "/readyz").Code)

	// Draining twice is a no-op.
	require.Equal(t, http.StatusOK, get(srv.srv.Handler, "/drain").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(srv.srv.Handler, "/readyz").Code)

	require.Equal(t, http.StatusOK, get(srv.srv.Handler, "/undrain").Code)
	require.Equal(t, http.StatusOK, get(srv.srv.Handler, "/readyz").Code)
}

func TestRouteRegistrarsAreMounted(t *testing.T) {
	srv := newTestServer(t, pingRegistrar{})

	rec := get(srv.srv.Handler, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pong", rec.Body.String())
}
