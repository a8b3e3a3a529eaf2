package schema

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoreapi/pkg/requestcontext"
)

func testSchema() *Schema {
	return New("profile",
		Char("account", Nullable()),
		Char("login", Required(), Nullable()),
		Char("token", Required(), Nullable()),
		Phone("phone", Nullable()),
		Birthday("birthday", Nullable()),
		ClientIDs("client_ids"),
	)
}

func TestNewRejectsBadDeclarations(t *testing.T) {
	assert.PanicsWithValue(t, `schema dup: duplicate field "a"`, func() {
		New("dup", Char("a"), Char("a"))
	})
	assert.Panics(t, func() {
		New("empty", Char(""))
	})
}

func TestFieldsKeepDeclarationOrder(t *testing.T) {
	s := testSchema()
	names := make([]string, 0)
	for _, f := range s.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"account", "login", "token", "phone", "birthday", "client_ids"}, names)
	assert.Equal(t, "profile", s.Name())
}

func TestBindCollectsEveryErrorInOrder(t *testing.T) {
	req := testSchema().Bind(context.Background(), map[string]any{
		"account":    42,
		"phone":      "123",
		"client_ids": []any{},
	})

	require.False(t, req.Valid())
	fields := make([]string, 0)
	for _, e := range req.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"account", "login", "token", "phone", "client_ids"}, fields)
	assert.Equal(t,
		"Field account must be a string\n"+
			"Field login must be present\n"+
			"Field token must be present\n"+
			"Field phone is not a valid phone number\n"+
			"Field client_ids must be not nullable",
		req.Error())
}

func TestBindNilMapping(t *testing.T) {
	req := testSchema().Bind(context.Background(), nil)
	assert.False(t, req.Valid())
	assert.Len(t, req.Errors(), 2)
	assert.Empty(t, req.Present())
}

func TestBindIsIdempotent(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local))
	raw := map[string]any{
		"account":    "horns&hoofs",
		"login":      "h&f",
		"token":      "",
		"phone":      79175002040,
		"birthday":   "01.01.1990",
		"client_ids": []any{1, 2},
	}
	s := testSchema()

	first := s.Bind(ctx, raw)
	second := s.Bind(ctx, raw)

	require.True(t, first.Valid())
	require.True(t, second.Valid())
	assert.Empty(t, first.Errors())
	assert.Equal(t, first.values, second.values)
	assert.Equal(t, first.Present(), second.Present())
}

func TestAccessors(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local))
	req := testSchema().Bind(ctx, map[string]any{
		"login":      "h&f",
		"token":      "abc",
		"account":    nil,
		"phone":      "79175002040",
		"birthday":   "25.11.1980",
		"client_ids": []any{1, 2, 3},
	})
	require.True(t, req.Valid())

	assert.Equal(t, []string{"login", "token", "phone", "birthday", "client_ids"}, req.Present())
	assert.False(t, req.IsSet("account"))
	assert.Equal(t, "", req.String("account"))
	assert.Equal(t, "79175002040", req.String("phone"))
	assert.Equal(t, []int64{1, 2, 3}, req.IntSlice("client_ids"))

	born, ok := req.Time("birthday")
	require.True(t, ok)
	assert.Equal(t, "19801125", born.Format("20060102"))

	_, ok = req.Int("phone")
	assert.False(t, ok)
	v, ok := req.Value("login")
	assert.True(t, ok)
	assert.Equal(t, "h&f", v)
	assert.Nil(t, req.Map("login"))
}
