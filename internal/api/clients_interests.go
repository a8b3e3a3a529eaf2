package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"scoreapi/internal/scoring"
	"scoreapi/pkg/platform/dedupe"
	"scoreapi/pkg/requestcontext"
)

func (d *Dispatcher) clientsInterests(ctx context.Context, req MethodRequest) Response {
	bound := ClientsInterestsSchema.Bind(ctx, req.Arguments)
	if !bound.Valid() {
		d.logger.WarnContext(ctx, "invalid clients_interests arguments",
			"errors", bound.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return Response{Code: http.StatusUnprocessableEntity, Body: bound.Error()}
	}
	args := newClientsInterestsRequest(bound)
	requestcontext.Annotate(ctx, "nclients", len(args.ClientIDs))

	var (
		mu     sync.Mutex
		result = make(map[string][]string, len(args.ClientIDs))
		g      errgroup.Group
	)
	g.SetLimit(d.concurrency)
	for _, id := range dedupe.Values(args.ClientIDs) {
		g.Go(func() error {
			interests, err := scoring.Interests(ctx, d.store, id)
			if err != nil {
				d.logger.WarnContext(ctx, "interests lookup failed",
					"client_id", id,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				return nil
			}
			mu.Lock()
			result[strconv.FormatInt(id, 10)] = interests
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(result) == 0 {
		d.logger.WarnContext(ctx, "clients_interests rejected",
			"reason", MsgStoreUnreachable,
			"request_id", requestcontext.RequestID(ctx),
		)
		return Response{Code: http.StatusNotFound, Body: MsgStoreUnreachable}
	}
	return Response{Code: http.StatusOK, Body: result}
}
