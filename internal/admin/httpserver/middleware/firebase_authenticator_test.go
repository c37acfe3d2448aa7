package middleware

import (
	"context"
	"net/http"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/require"
)

type stubFirebaseVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (s *stubFirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	return s.token, s.err
}

func TestFirebaseAuthenticatorSuccess(t *testing.T) {
	verifier := &stubFirebaseVerifier{
		token: &firebaseauth.Token{
			UID: "user-123",
			Claims: map[string]any{
				"email":      "admin@example.cr",
				"role":       []any{"admin", "user"},
				"empresa_id": float64(12),
			},
		},
	}

	auth := NewFirebaseAuthenticator(verifier)
	req, _ := http.NewRequest(http.MethodGet, "/", nil)

	user, err := auth.Authenticate(req, "good-token")
	require.NoError(t, err)
	require.Equal(t, "user-123", user.UID)
	require.Equal(t, "admin@example.cr", user.Email)
	require.Equal(t, []string{"admin", "user"}, user.Roles)
	require.Equal(t, "12", user.CompanyID)
	require.Equal(t, "good-token", user.Token)
}

func TestFirebaseAuthenticatorHandlesExpiredToken(t *testing.T) {
	auth := NewFirebaseAuthenticator(&stubFirebaseVerifier{err: ErrTokenExpired})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.Authenticate(req, "expired")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, ReasonTokenExpired, authErr.Reason)
}

func TestFirebaseAuthenticatorRejectsMissingToken(t *testing.T) {
	auth := NewFirebaseAuthenticator(&stubFirebaseVerifier{})
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.Authenticate(req, "  ")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, ReasonMissingToken, authErr.Reason)
}
