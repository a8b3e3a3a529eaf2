package testutil

import (
	"context"
	"time"

	"scoreapi/pkg/requestcontext"
)

// CallContext returns a context pinned to now with a fresh annotation set, the
// state the HTTP middleware gives every call.
func CallContext(now time.Time) (context.Context, *requestcontext.Annotations) {
	ann := requestcontext.NewAnnotations()
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithAnnotations(ctx, ann)
	return ctx, ann
}

// WithRequestID returns ctx carrying a request id, as the middleware would set it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return requestcontext.WithRequestID(ctx, id)
}
