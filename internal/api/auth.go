package api

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"scoreapi/pkg/requestcontext"
)

// adminTokenLayout truncates the request time to the hour.
const adminTokenLayout = "2006010215"

// Authenticator checks caller tokens against salted sha512 digests.
type Authenticator struct {
	salt      string
	adminSalt string
}

// NewAuthenticator builds an Authenticator. Both salts are required.
func NewAuthenticator(salt, adminSalt string) (*Authenticator, error) {
	if salt == "" {
		return nil, errors.New("salt is required")
	}
	if adminSalt == "" {
		return nil, errors.New("admin salt is required")
	}
	return &Authenticator{salt: salt, adminSalt: adminSalt}, nil
}

// Check reports whether req carries the token derived for its caller. Admin
// tokens are derived from the request hour, so they rotate hourly.
func (a *Authenticator) Check(ctx context.Context, req MethodRequest) bool {
	var expected string
	if req.IsAdmin() {
		expected = a.AdminToken(requestcontext.Now(ctx))
	} else {
		expected = a.UserToken(req.Account, req.Login)
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(req.Token)) == 1
}

// AdminToken returns the admin token valid during the hour containing now.
func (a *Authenticator) AdminToken(now time.Time) string {
	return digest(now.Format(adminTokenLayout) + a.adminSalt)
}

// UserToken returns the token for an account and login.
func (a *Authenticator) UserToken(account, login string) string {
	return digest(account + login + a.salt)
}

func digest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
