// Package api validates method calls, authenticates callers and routes them to
// the online_score and clients_interests handlers.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"scoreapi/internal/platform/metrics"
	"scoreapi/pkg/requestcontext"
)

// Response bodies for terminal failures.
const (
	MsgForbidden        = "Forbidden"
	MsgWrongMethod      = "Wrong request method"
	MsgTooManyNulls     = "Two much null arguments"
	MsgStoreUnreachable = "Can not connect to store db"
	MsgInternal         = "Internal Server Error"
)

// Store is the subset of the store the handlers depend on.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	CacheGet(ctx context.Context, key string) (string, bool)
	CacheSet(ctx context.Context, key, value string, ttl time.Duration)
}

// Call is one inbound method call.
type Call struct {
	Body    map[string]any
	Headers http.Header
}

// Response is the dispatcher result: a body and a status code.
type Response struct {
	Code int
	Body any
}

type methodHandler func(ctx context.Context, req MethodRequest) Response

var tracer = otel.Tracer("scoreapi/internal/api")

// Dispatcher is immutable after New and safe for concurrent calls.
type Dispatcher struct {
	store       Store
	auth        *Authenticator
	logger      *slog.Logger
	metrics     *metrics.Metrics
	scoreTTL    time.Duration
	concurrency int
	methods     map[string]methodHandler
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithScoreTTL sets how long computed scores stay cached.
func WithScoreTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) {
		if ttl > 0 {
			d.scoreTTL = ttl
		}
	}
}

// WithInterestsConcurrency bounds the parallel store lookups of one
// clients_interests call.
func WithInterestsConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// New constructs a Dispatcher.
func New(store Store, auth *Authenticator, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if auth == nil {
		return nil, errors.New("authenticator is required")
	}
	d := &Dispatcher{
		store:       store,
		auth:        auth,
		logger:      slog.Default(),
		scoreTTL:    time.Hour,
		concurrency: 8,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	d.methods = map[string]methodHandler{
		MethodOnlineScore:      d.onlineScore,
		MethodClientsInterests: d.clientsInterests,
	}
	return d, nil
}

// Handle validates, authenticates and routes one call. It never panics: an
// unexpected fault becomes a 500 response.
func (d *Dispatcher) Handle(ctx context.Context, call Call) (resp Response) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "api.dispatch")
	defer span.End()

	method := "invalid"
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.ErrorContext(ctx, "dispatch panic",
				"panic", fmt.Sprint(rec),
				"request_id", requestcontext.RequestID(ctx),
			)
			span.SetStatus(codes.Error, "panic")
			resp = Response{Code: http.StatusInternalServerError, Body: MsgInternal}
		}
		span.SetAttributes(
			attribute.String("api.method", method),
			attribute.Int("api.code", resp.Code),
		)
		d.metrics.ObserveDispatch(method, resp.Code, time.Since(start))
	}()

	envelope := MethodSchema.Bind(ctx, call.Body)
	if !envelope.Valid() {
		d.logger.WarnContext(ctx, "invalid method envelope",
			"errors", envelope.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return Response{Code: http.StatusUnprocessableEntity, Body: envelope.Error()}
	}
	req := newMethodRequest(envelope)
	handler, known := d.methods[req.Method]
	if known {
		method = req.Method
	} else {
		method = "unknown"
	}

	if !d.auth.Check(ctx, req) {
		d.logger.WarnContext(ctx, "authentication failed",
			"login", req.Login,
			"method", req.Method,
			"request_id", requestcontext.RequestID(ctx),
		)
		return Response{Code: http.StatusForbidden, Body: MsgForbidden}
	}

	if !known {
		return Response{Code: http.StatusBadRequest, Body: MsgWrongMethod}
	}
	return handler(ctx, req)
}
