// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values, the dispatcher and handlers read them:
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//	requestcontext.Annotate(ctx, "nclients", 3)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"sort"
	"sync"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	annotationsKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyAnnotations = annotationsKey{}
)

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (CLI, tests, background work).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// -----------------------------------------------------------------------------
// Call annotations
// -----------------------------------------------------------------------------

// Annotations collects facts recorded while a call is handled ("has",
// "nclients", ...). The transport layer logs them once the call completes.
type Annotations struct {
	mu     sync.Mutex
	values map[string]any
}

// NewAnnotations returns an empty annotation set.
func NewAnnotations() *Annotations {
	return &Annotations{values: make(map[string]any)}
}

// Set records a value, replacing any earlier value under the same key.
func (a *Annotations) Set(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[key] = value
}

// Get returns the value recorded under key.
func (a *Annotations) Get(key string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.values[key]
	return v, ok
}

// All returns a copy of the recorded values.
func (a *Annotations) All() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// LogAttrs flattens the annotations into slog-style key/value pairs, sorted by key.
func (a *Annotations) LogAttrs() []any {
	all := a.All()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		attrs = append(attrs, k, all[k])
	}
	return attrs
}

// WithAnnotations attaches an annotation set to the context.
func WithAnnotations(ctx context.Context, a *Annotations) context.Context {
	return context.WithValue(ctx, ContextKeyAnnotations, a)
}

// AnnotationsFrom returns the annotation set attached to ctx, or nil.
func AnnotationsFrom(ctx context.Context) *Annotations {
	if a, ok := ctx.Value(ContextKeyAnnotations).(*Annotations); ok {
		return a
	}
	return nil
}

// Annotate records a value on the call's annotation set. No-op when the
// context carries none.
func Annotate(ctx context.Context, key string, value any) {
	if a := AnnotationsFrom(ctx); a != nil {
		a.Set(key, value)
	}
}
