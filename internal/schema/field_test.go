package schema

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"scoreapi/pkg/requestcontext"
)

type FieldSuite struct {
	suite.Suite
	ctx context.Context
	now time.Time
}

func TestFieldSuite(t *testing.T) {
	suite.Run(t, new(FieldSuite))
}

func (s *FieldSuite) SetupTest() {
	s.now = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *FieldSuite) validate(f Field, raw any) (any, error) {
	return f.Validate(s.ctx, raw, true)
}

// =============================================================================
// Presence policy
// =============================================================================

func (s *FieldSuite) TestPresencePolicy() {
	required := Char("login", Required())
	optional := Char("account")

	s.Run("absent required field must be present", func() {
		_, err := required.Validate(s.ctx, nil, false)
		s.Require().Error(err)
		s.Equal("Field login must be present", err.Error())
	})

	s.Run("null required field must be present", func() {
		_, err := required.Validate(s.ctx, nil, true)
		s.Require().Error(err)
		s.Equal("Field login must be present", err.Error())
	})

	s.Run("absent optional field resolves to null", func() {
		v, err := optional.Validate(s.ctx, nil, false)
		s.NoError(err)
		s.Nil(v)
	})

	s.Run("null optional field resolves to null regardless of nullable", func() {
		v, err := optional.Validate(s.ctx, nil, true)
		s.NoError(err)
		s.Nil(v)
	})

	s.Run("empty values rejected when not nullable", func() {
		cases := []struct {
			field Field
			raw   any
		}{
			{Char("method", Required()), ""},
			{Arguments("arguments"), map[string]any{}},
			{ClientIDs("client_ids", Required()), []any{}},
			{Gender("gender"), json.Number("0")},
			{Gender("gender"), 0},
		}
		for _, tc := range cases {
			_, err := tc.field.Validate(s.ctx, tc.raw, true)
			s.Require().Error(err, "raw %#v", tc.raw)
			s.Equal("Field "+tc.field.Name()+" must be not nullable", err.Error())
		}
	})

	s.Run("empty values stored as-is when nullable", func() {
		cases := []struct {
			field Field
			raw   any
		}{
			{Char("first_name", Nullable()), ""},
			{Arguments("arguments", Nullable()), map[string]any{}},
			{Gender("gender", Nullable()), 0},
			{Email("email", Nullable()), ""},
			{Phone("phone", Nullable()), ""},
		}
		for _, tc := range cases {
			v, err := tc.field.Validate(s.ctx, tc.raw, true)
			s.NoError(err, "raw %#v", tc.raw)
			s.Equal(tc.raw, v)
		}
	})
}

// =============================================================================
// Type rules
// =============================================================================

func (s *FieldSuite) TestChar() {
	f := Char("first_name", Nullable())

	v, err := s.validate(f, "new_string")
	s.NoError(err)
	s.Equal("new_string", v)

	_, err = s.validate(f, 35)
	s.EqualError(err, "Field first_name must be a string")
}

func (s *FieldSuite) TestArguments() {
	f := Arguments("arguments", Nullable())

	v, err := s.validate(f, map[string]any{"a": 1})
	s.NoError(err)
	s.Equal(map[string]any{"a": 1}, v)

	_, err = s.validate(f, "dict")
	s.EqualError(err, "Field arguments must be a JSON object")
}

func (s *FieldSuite) TestEmail() {
	f := Email("email", Nullable())

	for _, good := range []string{"stupnikov@otus.ru", "otus@otus.ru", "a.b+c_d-e@sub-domain.example.com"} {
		v, err := s.validate(f, good)
		s.NoError(err, good)
		s.Equal(good, v)
	}

	for _, bad := range []string{"otusotus.ru", "user@localhost", "us er@otus.ru", "@otus.ru"} {
		_, err := s.validate(f, bad)
		s.EqualError(err, "Field email is not a valid email address", bad)
	}

	_, err := s.validate(f, 42)
	s.EqualError(err, "Field email must be a string")
}

func (s *FieldSuite) TestPhone() {
	f := Phone("phone", Nullable())

	s.Run("text and integer canonicalize to the same string", func() {
		for _, raw := range []any{"79175002040", 79175002040, int64(79175002040), json.Number("79175002040"), float64(79175002040)} {
			v, err := s.validate(f, raw)
			s.NoError(err, "raw %#v", raw)
			s.Equal("79175002040", v)
		}
	})

	s.Run("wrong length or prefix rejected", func() {
		for _, raw := range []any{"1234567890", "7012345678", "701234567890", "7phonenumber", "89175002040", 701234567890, 7012345678} {
			_, err := s.validate(f, raw)
			s.EqualError(err, "Field phone is not a valid phone number", "raw %#v", raw)
		}
	})

	s.Run("non-integral numbers rejected", func() {
		for _, raw := range []any{json.Number("79175002040.5"), 7.5, []any{"7"}} {
			_, err := s.validate(f, raw)
			s.EqualError(err, "Field phone must be a string or an integer", "raw %#v", raw)
		}
	})
}

func (s *FieldSuite) TestDate() {
	f := Date("date", Nullable())

	for _, good := range []string{"25.03.1970", "99.99.9999"} {
		v, err := s.validate(f, good)
		s.NoError(err, good)
		s.Equal(good, v)
	}

	for _, bad := range []string{"25/03/1970", "25031970", "data", "25.03.1970 "} {
		_, err := s.validate(f, bad)
		s.EqualError(err, "Field date is not a date in DD.MM.YYYY format", bad)
	}
}

func (s *FieldSuite) TestBirthday() {
	f := Birthday("birthday", Nullable())

	s.Run("recent birthday parses to a date", func() {
		v, err := s.validate(f, "01.01.1960")
		s.Require().NoError(err)
		born, ok := v.(time.Time)
		s.Require().True(ok)
		s.True(born.Equal(time.Date(1960, time.January, 1, 0, 0, 0, 0, time.Local)))
	})

	s.Run("seventy years or more rejected", func() {
		_, err := s.validate(f, "01.01.1940")
		s.EqualError(err, "Field birthday is more than 70 years ago")
	})

	s.Run("age uses whole days divided by 365", func() {
		day := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.Local)
		limit := day.AddDate(0, 0, -70*365)
		_, err := s.validate(f, limit.Format(DateLayout))
		s.Error(err)

		justUnder := limit.AddDate(0, 0, 1)
		_, err = s.validate(f, justUnder.Format(DateLayout))
		s.NoError(err)
	})

	s.Run("pattern match without a calendar date rejected", func() {
		_, err := s.validate(f, "99.99.1999")
		s.EqualError(err, "Field birthday is not a valid calendar date")
	})

	s.Run("wrong shape rejected", func() {
		_, err := s.validate(f, "25/03/1970")
		s.EqualError(err, "Field birthday is not a date in DD.MM.YYYY format")
	})
}

func (s *FieldSuite) TestGender() {
	f := Gender("gender", Nullable())

	for _, raw := range []any{GenderUnknown, GenderMale, GenderFemale, json.Number("2"), 1} {
		_, err := s.validate(f, raw)
		s.NoError(err, "raw %#v", raw)
	}

	for _, raw := range []any{-1, 3, json.Number("3")} {
		_, err := s.validate(f, raw)
		s.EqualError(err, "Field gender must be one of 0, 1, 2", "raw %#v", raw)
	}

	for _, raw := range []any{"male", true, json.Number("1.0")} {
		_, err := s.validate(f, raw)
		s.EqualError(err, "Field gender must be an integer", "raw %#v", raw)
	}
}

func (s *FieldSuite) TestClientIDs() {
	f := ClientIDs("client_ids", Required())

	for _, raw := range []any{[]any{3, 4, 5}, []int{3, 4, 5}, [3]int{3, 4, 5}, []any{json.Number("3"), json.Number("4"), json.Number("5")}} {
		v, err := s.validate(f, raw)
		s.NoError(err, "raw %#v", raw)
		s.Equal([]int64{3, 4, 5}, v)
	}

	_, err := s.validate(f, 3)
	s.EqualError(err, "Field client_ids must be an array")

	_, err = s.validate(f, []any{"3", "4", "5"})
	s.EqualError(err, "Field client_ids must contain only integers")
}

func TestIsEmpty(t *testing.T) {
	for _, v := range []any{"", false, 0, 0.0, json.Number("0"), map[string]any{}, []any{}, []int64{}} {
		assert.True(t, isEmpty(v), "%#v", v)
	}
	for _, v := range []any{"a", true, 1, json.Number("7"), map[string]any{"a": 1}, []any{0}} {
		assert.False(t, isEmpty(v), "%#v", v)
	}
}

func TestAsInt(t *testing.T) {
	n, ok := asInt(uint8(7))
	require.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = asInt("7")
	assert.False(t, ok)

	_, ok = asInt(nil)
	assert.False(t, ok)
}
