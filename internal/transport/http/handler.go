package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scoreapi/internal/api"
	"scoreapi/pkg/requestcontext"
)

// Dispatcher handles a decoded method call.
type Dispatcher interface {
	Handle(ctx context.Context, call api.Call) api.Response
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the thin HTTP layer over the dispatcher.
type Handler struct {
	dispatcher Dispatcher
	health     Pinger
	logger     *slog.Logger
}

// NewHandler builds a Handler. health may be nil, in which case /healthz
// always reports ok.
func NewHandler(dispatcher Dispatcher, health Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatcher: dispatcher, health: health, logger: logger}
}

// Register registers the method and health routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/method", h.handleMethod)
	r.Get("/healthz", h.handleHealth)
}

func (h *Handler) handleMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	err := dec.Decode(&body)
	if err == nil {
		err = expectEOF(dec)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "invalid request body",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		writeResponse(w, http.StatusBadRequest, nil)
		return
	}

	resp := h.dispatcher.Handle(ctx, api.Call{Body: body, Headers: r.Header})
	writeResponse(w, resp.Code, resp.Body)
}

// expectEOF rejects anything but whitespace after the first JSON value.
func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.health != nil {
		if err := h.health.Ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed",
				"error", err.Error(),
				"request_id", requestcontext.RequestID(ctx),
			)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
