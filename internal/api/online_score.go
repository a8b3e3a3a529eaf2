package api

import (
	"context"
	"net/http"

	"scoreapi/internal/scoring"
	"scoreapi/pkg/requestcontext"
)

// AdminScore is returned to admin callers without touching the store.
const AdminScore = 42

// ScoreResponse is the online_score success body.
type ScoreResponse struct {
	Score float64 `json:"score"`
}

func (d *Dispatcher) onlineScore(ctx context.Context, req MethodRequest) Response {
	if req.IsAdmin() {
		return Response{Code: http.StatusOK, Body: ScoreResponse{Score: AdminScore}}
	}

	bound := OnlineScoreSchema.Bind(ctx, req.Arguments)
	if !bound.Valid() {
		d.logger.WarnContext(ctx, "invalid online_score arguments",
			"errors", bound.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return Response{Code: http.StatusUnprocessableEntity, Body: bound.Error()}
	}
	args := newOnlineScoreRequest(bound)

	if !args.Complete() {
		d.logger.WarnContext(ctx, "online_score rejected",
			"reason", MsgTooManyNulls,
			"present", args.Present,
			"request_id", requestcontext.RequestID(ctx),
		)
		return Response{Code: http.StatusUnprocessableEntity, Body: MsgTooManyNulls}
	}

	requestcontext.Annotate(ctx, "has", args.Present)
	score := scoring.Score(ctx, d.store, args.Profile(), d.scoreTTL)
	return Response{Code: http.StatusOK, Body: ScoreResponse{Score: score}}
}
