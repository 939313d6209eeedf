// Package httpserver provides the reusable HTTP server shell shared by the
// randomness and aggregation service binaries.
//
// BaseServer mounts component routes behind standard middleware and adds the
// operational endpoints every deployment needs:
//
//   - Liveness check (/livez)
//   - Readiness check (/readyz)
//   - Drain control for load balancers (/drain, /undrain)
//   - Optional Prometheus-compatible metrics on a separate listener
//   - Optional pprof debugging endpoints
//
// Components plug in by implementing RouteRegistrar:
//
//	func (h *HTTPRandomness) RegisterRoutes(r chi.Router) {
//	    r.Post("/randomness", h.handleRandomness)
//	    r.Get("/info", h.handleInfo)
//	}
//
//	srv, err := httpserver.New(cfg, handler)
//	if err != nil {
//	    return err
//	}
//	srv.RunInBackground()
//	defer srv.Shutdown()
//
// Shutdown waits for in-flight requests up to the configured graceful
// shutdown duration.
package httpserver
