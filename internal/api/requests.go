package api

import (
	"time"

	"scoreapi/internal/schema"
	"scoreapi/internal/scoring"
)

// AdminLogin is the login that authenticates with the hourly admin token.
const AdminLogin = "admin"

// Method names routed by the dispatcher.
const (
	MethodOnlineScore      = "online_score"
	MethodClientsInterests = "clients_interests"
)

var (
	// MethodSchema is the envelope every call is validated against.
	MethodSchema = schema.New("method",
		schema.Char("account", schema.Nullable()),
		schema.Char("login", schema.Required(), schema.Nullable()),
		schema.Char("token", schema.Required(), schema.Nullable()),
		schema.Arguments("arguments", schema.Required(), schema.Nullable()),
		schema.Char("method", schema.Required()),
	)

	OnlineScoreSchema = schema.New(MethodOnlineScore,
		schema.Char("first_name", schema.Nullable()),
		schema.Char("last_name", schema.Nullable()),
		schema.Email("email", schema.Nullable()),
		schema.Phone("phone", schema.Nullable()),
		schema.Birthday("birthday", schema.Nullable()),
		schema.Gender("gender", schema.Nullable()),
	)

	ClientsInterestsSchema = schema.New(MethodClientsInterests,
		schema.ClientIDs("client_ids", schema.Required()),
		schema.Date("date", schema.Nullable()),
	)
)

// MethodRequest is a validated envelope.
type MethodRequest struct {
	Account   string
	Login     string
	Token     string
	Method    string
	Arguments map[string]any
}

func newMethodRequest(r *schema.Request) MethodRequest {
	return MethodRequest{
		Account:   r.String("account"),
		Login:     r.String("login"),
		Token:     r.String("token"),
		Method:    r.String("method"),
		Arguments: r.Map("arguments"),
	}
}

// IsAdmin reports whether the caller claims the admin login.
func (m MethodRequest) IsAdmin() bool {
	return m.Login == AdminLogin
}

// OnlineScoreRequest is a validated online_score argument set.
type OnlineScoreRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	Gender    int64
	// Present lists the non-null fields in declaration order.
	Present []string
}

func newOnlineScoreRequest(r *schema.Request) OnlineScoreRequest {
	birthday, _ := r.Time("birthday")
	gender, _ := r.Int("gender")
	return OnlineScoreRequest{
		FirstName: r.String("first_name"),
		LastName:  r.String("last_name"),
		Email:     r.String("email"),
		Phone:     r.String("phone"),
		Birthday:  birthday,
		Gender:    gender,
		Present:   r.Present(),
	}
}

// Complete reports whether at least one scoring pair is fully present.
func (o OnlineScoreRequest) Complete() bool {
	has := make(map[string]bool, len(o.Present))
	for _, name := range o.Present {
		has[name] = true
	}
	return (has["phone"] && has["email"]) ||
		(has["first_name"] && has["last_name"]) ||
		(has["gender"] && has["birthday"])
}

// Profile converts the request into scoring input.
func (o OnlineScoreRequest) Profile() scoring.Profile {
	return scoring.Profile{
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Email:     o.Email,
		Phone:     o.Phone,
		Birthday:  o.Birthday,
		Gender:    o.Gender,
		Present:   append([]string(nil), o.Present...),
	}
}

// ClientsInterestsRequest is a validated clients_interests argument set.
type ClientsInterestsRequest struct {
	ClientIDs []int64
	Date      string
}

func newClientsInterestsRequest(r *schema.Request) ClientsInterestsRequest {
	return ClientsInterestsRequest{
		ClientIDs: r.IntSlice("client_ids"),
		Date:      r.String("date"),
	}
}
