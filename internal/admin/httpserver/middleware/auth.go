package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/observability"
	appsession "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
)

type authContextKey string

const userContextKey authContextKey = "auth.user"

// TokenCookieName carries the bearer token between requests.
const TokenCookieName = "Authorization"

// User represents the authenticated staff member.
type User struct {
	UID       string
	Email     string
	Name      string
	Roles     []string
	CompanyID string
	Token     string
}

// Authenticator resolves an incoming Bearer token into a User.
type Authenticator interface {
	Authenticate(r *http.Request, token string) (*User, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(r *http.Request, token string) (*User, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(r *http.Request, token string) (*User, error) {
	return f(r, token)
}

// ErrUnauthorized is returned when authentication fails.
var ErrUnauthorized = errors.New("unauthorized")

// AuthError contains reason codes for failed authentication attempts.
type AuthError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError constructs an AuthError with the provided reason.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

const (
	// ReasonMissingToken indicates an auth attempt without credentials.
	ReasonMissingToken = "missing_token"
	// ReasonTokenInvalid indicates a malformed or invalid token.
	ReasonTokenInvalid = "token_invalid"
	// ReasonTokenExpired indicates an expired token which may be recoverable.
	ReasonTokenExpired = "token_expired"
)

// DefaultAuthenticator accepts any non-empty bearer token and is intended for local development.
func DefaultAuthenticator() Authenticator {
	return AuthenticatorFunc(func(_ *http.Request, token string) (*User, error) {
		if token == "" {
			return nil, ErrUnauthorized
		}
		return &User{UID: token, Roles: []string{"admin"}, CompanyID: "1", Token: token}, nil
	})
}

// Auth validates incoming requests and either attaches a User to context or
// redirects to login. A session already holding the same token skips the
// authenticator round-trip.
func Auth(authenticator Authenticator, loginPath string) func(http.Handler) http.Handler {
	if authenticator == nil {
		authenticator = DefaultAuthenticator()
	}
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := observability.FromContext(ctx)

			token := parseBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				token = cookieToken(r)
			}
			if token == "" {
				logger.Info("auth failure", zap.String("reason", ReasonMissingToken))
				destroySession(ctx)
				handleUnauthorized(w, r, loginPath, ReasonMissingToken)
				return
			}

			sess, _ := SessionFromContext(ctx)
			user := userFromSession(sess, token)
			if user == nil {
				var err error
				user, err = authenticator.Authenticate(r, token)
				if err != nil || user == nil {
					reason := ReasonTokenInvalid
					var authErr *AuthError
					if errors.As(err, &authErr) && authErr.Reason != "" {
						reason = authErr.Reason
					}
					if err == nil {
						err = ErrUnauthorized
					}
					logger.Info("auth failure", zap.String("reason", reason), zap.Error(err))
					destroySession(ctx)
					handleUnauthorized(w, r, loginPath, reason)
					return
				}
				if user.Token == "" {
					user.Token = token
				}
				if sess != nil {
					sess.SetUser(sessionUser(user))
				}
			}

			ctx = ContextWithUser(ctx, user)
			ctx = observability.WithLogger(ctx, logger.With(zap.String("uid", user.UID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithUser attaches the user to ctx.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user if present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}

func userFromSession(sess *appsession.Session, token string) *User {
	if sess == nil {
		return nil
	}
	stored := sess.User()
	if stored == nil || stored.UID == "" || stored.Token != token {
		return nil
	}
	return &User{
		UID:       stored.UID,
		Email:     stored.Email,
		Name:      stored.Name,
		Roles:     slices.Clone(stored.Roles),
		CompanyID: stored.CompanyID,
		Token:     stored.Token,
	}
}

func sessionUser(user *User) *appsession.User {
	return &appsession.User{
		UID:       user.UID,
		Email:     user.Email,
		Name:      user.Name,
		Roles:     slices.Clone(user.Roles),
		CompanyID: user.CompanyID,
		Token:     user.Token,
	}
}

// StoreUser records user in the request session, typically after login.
func StoreUser(ctx context.Context, user *User) {
	if sess, ok := SessionFromContext(ctx); ok && user != nil {
		sess.SetUser(sessionUser(user))
	}
}

// SetTokenCookie stores token for later requests. A zero expires keeps it for
// the browser session only.
func SetTokenCookie(w http.ResponseWriter, r *http.Request, token, path string, expires time.Time) {
	if strings.TrimSpace(token) == "" {
		ClearTokenCookie(w, path)
		return
	}
	value := token
	if parseBearerToken(token) == "" {
		value = "Bearer " + token
	}
	cookie := &http.Cookie{
		Name:     TokenCookieName,
		Value:    url.QueryEscape(value),
		Path:     cookiePath(path),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
		if remaining := time.Until(expires); remaining > 0 {
			cookie.MaxAge = int(remaining.Round(time.Second).Seconds())
		}
	}
	http.SetCookie(w, cookie)
}

// ClearTokenCookie expires the token cookie.
func ClearTokenCookie(w http.ResponseWriter, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     cookiePath(path),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookiePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "/"
	}
	return path
}

func parseBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func cookieToken(r *http.Request) string {
	for _, name := range []string{TokenCookieName, "__session"} {
		c, err := r.Cookie(name)
		if err != nil {
			continue
		}
		val := strings.TrimSpace(c.Value)
		if unescaped, err := url.QueryUnescape(val); err == nil {
			val = unescaped
		}
		if token := parseBearerToken(val); token != "" {
			return token
		}
		if val != "" {
			return val
		}
	}
	return ""
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	if IsHTMXRequest(r.Context()) {
		if reason == ReasonTokenExpired {
			w.Header().Set("HX-Refresh", "true")
		} else {
			w.Header().Set("HX-Redirect", loginPath)
		}
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	redirectURL := loginPath
	if reason == ReasonTokenExpired {
		if u, err := url.Parse(loginPath); err == nil {
			q := u.Query()
			q.Set("reason", "expired")
			u.RawQuery = q.Encode()
			redirectURL = u.String()
		}
	}
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func destroySession(ctx context.Context) {
	if sess, ok := SessionFromContext(ctx); ok {
		sess.Destroy()
	}
}
