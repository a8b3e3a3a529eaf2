package httptransport_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoreapi/internal/api"
	"scoreapi/internal/platform/logger"
	"scoreapi/internal/platform/metrics"
	"scoreapi/internal/scoring"
	"scoreapi/internal/store"
	httptransport "scoreapi/internal/transport/http"
	"scoreapi/pkg/testutil"
)

type fixture struct {
	router http.Handler
	auth   *api.Authenticator
	store  *store.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := logger.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	st, err := store.New(store.NewMemoryKV(), store.NewMemoryCache(),
		store.WithLogger(log), store.WithMetrics(m), store.WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	auth, err := api.NewAuthenticator("Otus", "42")
	require.NoError(t, err)
	d, err := api.New(st, auth, api.WithLogger(log), api.WithMetrics(m))
	require.NoError(t, err)

	return fixture{
		router: httptransport.NewRouter(httptransport.NewHandler(d, st, log), log, reg),
		auth:   auth,
		store:  st,
	}
}

func (f fixture) call(t *testing.T, login, token, method string, args map[string]any) *http.Request {
	t.Helper()
	return testutil.NewJSONRequest(t, http.MethodPost, "/method", map[string]any{
		"account":   "horns&hoofs",
		"login":     login,
		"token":     token,
		"method":    method,
		"arguments": args,
	})
}

func TestOnlineScoreOverHTTP(t *testing.T) {
	f := newFixture(t)
	userToken := f.auth.UserToken("horns&hoofs", "h&f")

	testutil.Given(t, "a user with a valid token", func(t *testing.T) {
		testutil.When(t, "phone and email are sent", func(t *testing.T) {
			args := map[string]any{"phone": "79175002040", "email": "stupnikov@otus.ru"}
			rr := testutil.DoRequest(f.router, f.call(t, "h&f", userToken, api.MethodOnlineScore, args))

			testutil.Then(t, "the score is returned and cached", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				got := testutil.DecodeResponse[api.ScoreResponse](t, rr)
				assert.InDelta(t, 3.0, got.Score, 1e-9)

				cached, ok := f.store.CacheGet(context.Background(), scoring.Key(scoring.Profile{Phone: "79175002040"}))
				assert.True(t, ok)
				assert.Equal(t, "3", cached)
			})
		})

		testutil.When(t, "only a first name is sent", func(t *testing.T) {
			rr := testutil.DoRequest(f.router, f.call(t, "h&f", userToken, api.MethodOnlineScore,
				map[string]any{"first_name": "a"}))

			testutil.Then(t, "the call is rejected as incomplete", func(t *testing.T) {
				testutil.AssertEnvelopeError(t, rr, http.StatusUnprocessableEntity, api.MsgTooManyNulls)
			})
		})
	})

	testutil.Given(t, "the admin with this hour's token", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, f.call(t, api.AdminLogin, f.auth.AdminToken(time.Now()),
			api.MethodOnlineScore, map[string]any{}))

		testutil.Then(t, "the fixed score is returned", func(t *testing.T) {
			testutil.AssertStatusOK(t, rr)
			got := testutil.DecodeResponse[api.ScoreResponse](t, rr)
			assert.InDelta(t, 42.0, got.Score, 1e-9)
		})
	})

	testutil.Given(t, "a wrong token", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, f.call(t, "h&f", "sdd", api.MethodOnlineScore, map[string]any{}))

		testutil.Then(t, "the call is forbidden", func(t *testing.T) {
			testutil.AssertEnvelopeError(t, rr, http.StatusForbidden, api.MsgForbidden)
		})
	})
}

func TestClientsInterestsOverHTTP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userToken := f.auth.UserToken("horns&hoofs", "h&f")

	for id, interests := range map[int64][]string{1: {"cars", "pets"}, 2: {"sport"}, 3: {"travel", "music"}} {
		require.NoError(t, scoring.SetInterests(ctx, f.store, id, interests))
	}

	testutil.Given(t, "interests stored for every client", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, f.call(t, "h&f", userToken, api.MethodClientsInterests,
			map[string]any{"client_ids": []int{1, 2, 3}, "date": "19.07.2017"}))

		testutil.Then(t, "every client is mapped by decimal id", func(t *testing.T) {
			testutil.AssertStatusOK(t, rr)
			got := testutil.DecodeResponse[map[string][]string](t, rr)
			assert.Equal(t, map[string][]string{
				"1": {"cars", "pets"},
				"2": {"sport"},
				"3": {"travel", "music"},
			}, got)
		})
	})

	testutil.Given(t, "a client with no stored interests", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, f.call(t, "h&f", userToken, api.MethodClientsInterests,
			map[string]any{"client_ids": []int{99}}))

		testutil.Then(t, "it maps to an empty list", func(t *testing.T) {
			testutil.AssertStatusOK(t, rr)
			got := testutil.DecodeResponse[map[string][]string](t, rr)
			assert.Equal(t, map[string][]string{"99": {}}, got)
		})
	})

	testutil.Given(t, "an unknown method", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, f.call(t, "h&f", userToken, "online_scores", map[string]any{}))

		testutil.Then(t, "the call is a bad request", func(t *testing.T) {
			testutil.AssertEnvelopeError(t, rr, http.StatusBadRequest, api.MsgWrongMethod)
		})
	})
}
