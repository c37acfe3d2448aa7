package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
)

// ProfileLookup resolves a backend bearer token into the user's profile.
type ProfileLookup interface {
	Profile(ctx context.Context, token string) (*account.Profile, error)
}

// AccountAuthenticator validates backend API tokens by fetching the
// profile they belong to.
type AccountAuthenticator struct {
	profiles ProfileLookup
}

// NewAccountAuthenticator constructs an Authenticator backed by the account service.
func NewAccountAuthenticator(profiles ProfileLookup) *AccountAuthenticator {
	if profiles == nil {
		panic("account profile lookup is required")
	}
	return &AccountAuthenticator{profiles: profiles}
}

// Authenticate fetches the profile for token. 401 responses are reported as expired tokens.
func (a *AccountAuthenticator) Authenticate(r *http.Request, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}
	profile, err := a.profiles.Profile(r.Context(), token)
	if err != nil {
		if backend.StatusCode(err) == http.StatusUnauthorized {
			return nil, NewAuthError(ReasonTokenExpired, err)
		}
		return nil, NewAuthError(ReasonTokenInvalid, err)
	}
	if profile == nil {
		return nil, NewAuthError(ReasonTokenInvalid, errors.New("empty profile"))
	}
	return UserFromProfile(*profile, token), nil
}

// UserFromProfile maps a backend profile onto a User.
func UserFromProfile(p account.Profile, token string) *User {
	uid := p.ID.String()
	if uid == "" {
		uid = p.Email
	}
	role := strings.TrimSpace(p.Role)
	if role == "" {
		role = "user"
	}
	return &User{
		UID:       uid,
		Email:     p.Email,
		Name:      p.Name,
		Roles:     []string{role},
		CompanyID: p.CompanyID.String(),
		Token:     token,
	}
}
