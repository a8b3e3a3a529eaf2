package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scoreapi/internal/platform/middleware"
)

// NewRouter wires the public endpoints and the shared middleware chain.
// gatherer may be nil to leave /metrics unmounted.
func NewRouter(h *Handler, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	h.Register(r)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, http.StatusNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, http.StatusMethodNotAllowed, nil)
	})
	return r
}

// writeResponse renders the response envelope. Success bodies go under
// "response"; anything else under "error", defaulting to the status text.
func writeResponse(w http.ResponseWriter, code int, body any) {
	if code == http.StatusOK {
		writeJSON(w, code, map[string]any{"response": body, "code": code})
		return
	}
	if body == nil || body == "" {
		body = http.StatusText(code)
	}
	writeJSON(w, code, map[string]any{"error": body, "code": code})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
