package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/rbac"
)

type mockAuthenticator struct {
	token string
	user  *User
	err   error
	calls int
}

func (m *mockAuthenticator) Authenticate(_ *http.Request, token string) (*User, error) {
	m.calls++
	if token != m.token {
		return nil, ErrUnauthorized
	}
	if m.err != nil {
		return nil, m.err
	}
	u := *m.user
	return &u, nil
}

func TestAuthMiddleware(t *testing.T) {
	auth := &mockAuthenticator{token: "valid", user: &User{UID: "user-1", Roles: []string{"admin"}}}

	handler := HTMX()(Auth(auth, "/admin/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "valid", user.Token)
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("missing token redirects", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
		require.Equal(t, http.StatusFound, rr.Code)
		require.Equal(t, "/admin/login", rr.Header().Get("Location"))
	})

	t.Run("htmx unauthorized returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.Equal(t, "/admin/login", rr.Header().Get("HX-Redirect"))
	})

	t.Run("valid token passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer valid")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("escaped bearer cookie passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: url.QueryEscape("Bearer valid")})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("firebase session cookie passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "__session", Value: "valid"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("expired token triggers refresh header", func(t *testing.T) {
		auth.err = NewAuthError(ReasonTokenExpired, errors.New("expired"))
		t.Cleanup(func() { auth.err = nil })

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer valid")
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.Equal(t, "true", rr.Header().Get("HX-Refresh"))
	})

	t.Run("expired token redirect carries reason", func(t *testing.T) {
		auth.err = NewAuthError(ReasonTokenExpired, errors.New("expired"))
		t.Cleanup(func() { auth.err = nil })

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer valid")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusFound, rr.Code)
		require.Equal(t, "/admin/login?reason=expired", rr.Header().Get("Location"))
	})
}

func TestAccountAuthenticator(t *testing.T) {
	t.Parallel()

	svc := account.NewStaticService(nil)
	auth := NewAccountAuthenticator(svc)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	user, err := auth.Authenticate(req, account.StaticToken)
	require.NoError(t, err)
	require.Equal(t, "1", user.UID)
	require.Equal(t, []string{"admin"}, user.Roles)
	require.Equal(t, "1", user.CompanyID)
	require.Equal(t, account.StaticToken, user.Token)

	_, err = auth.Authenticate(req, " ")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, ReasonMissingToken, authErr.Reason)
}

type failingProfiles struct{ status int }

func (f failingProfiles) Profile(context.Context, string) (*account.Profile, error) {
	return nil, &backend.Error{Service: "account", Status: f.status, Message: "no"}
}

func TestAccountAuthenticatorMapsBackendStatus(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var authErr *AuthError

	_, err := NewAccountAuthenticator(failingProfiles{status: http.StatusUnauthorized}).Authenticate(req, "tok")
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, ReasonTokenExpired, authErr.Reason)

	_, err = NewAccountAuthenticator(failingProfiles{status: http.StatusInternalServerError}).Authenticate(req, "tok")
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, ReasonTokenInvalid, authErr.Reason)
}

func TestUserFromProfileDefaults(t *testing.T) {
	t.Parallel()

	user := UserFromProfile(account.Profile{Email: "ana@example.cr"}, "tok")
	require.Equal(t, "ana@example.cr", user.UID)
	require.Equal(t, []string{"user"}, user.Roles)
}

func TestTokenCookieRoundTrip(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	SetTokenCookie(rec, req, "abc", "/admin", time.Now().Add(time.Hour))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, TokenCookieName, cookies[0].Name)
	require.Equal(t, "/admin", cookies[0].Path)
	require.True(t, cookies[0].HttpOnly)
	require.Positive(t, cookies[0].MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/admin", nil)
	next.AddCookie(cookies[0])
	require.Equal(t, "abc", cookieToken(next))

	rec = httptest.NewRecorder()
	ClearTokenCookie(rec, "")
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, "/", cleared[0].Path)
	require.Negative(t, cleared[0].MaxAge)
}

func TestCSRFMiddleware(t *testing.T) {
	mw := CSRF(CSRFConfig{CookieName: "csrf", HeaderName: "X-CSRF-Token"})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("issues cookie on GET", func(t *testing.T) {
		rr := httptest.NewRecorder()
		var token string
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token = CSRFTokenFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotEmpty(t, token)
		var found bool
		for _, c := range rr.Result().Cookies() {
			if c.Name == "csrf" {
				found = c.Value == token
			}
		}
		require.True(t, found, "csrf cookie must carry the context token")
	})

	t.Run("rejects unsafe request without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, req)
		require.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("rejects mismatched header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
		req.Header.Set("X-CSRF-Token", "other")
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, req)
		require.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("allows unsafe request with matching header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
		req.Header.Set("X-CSRF-Token", "token")
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("allows form field fallback", func(t *testing.T) {
		form := url.Values{CSRFFormField: {"token"}, "nombre": {"Ana"}}
		req := httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Ana", r.PostFormValue("nombre"))
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHTMXMiddleware(t *testing.T) {
	base := HTMX()

	t.Run("detects htmx", func(t *testing.T) {
		var info HTMXInfo
		handler := base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info = HTMXInfoFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/admin/catalogo/tabla", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Trigger-Name", "q")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.True(t, info.IsHTMX)
		require.True(t, info.Partial())
		require.Equal(t, "q", info.TriggerName)
	})

	t.Run("boosted requests render full pages", func(t *testing.T) {
		info := HTMXInfo{IsHTMX: true, IsBoosted: true}
		require.False(t, info.Partial())
	})

	t.Run("RequireHTMX blocks non-htmx", func(t *testing.T) {
		handler := base(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/fragments", nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Redirect uses HX-Redirect for htmx", func(t *testing.T) {
		handler := base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Redirect(w, r, "/admin/productos")
		}))
		req := httptest.NewRequest(http.MethodPost, "/admin/productos", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNoContent, rr.Code)
		require.Equal(t, "/admin/productos", rr.Header().Get("HX-Redirect"))

		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/productos", nil))
		require.Equal(t, http.StatusSeeOther, rr.Code)
		require.Equal(t, "/admin/productos", rr.Header().Get("Location"))
	})

	t.Run("Trigger appends events", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Trigger(rr, "saved")
		Trigger(rr, "refresh")
		require.Equal(t, "saved, refresh", rr.Header().Get("HX-Trigger"))
	})
}

func TestNoStoreMiddleware(t *testing.T) {
	handler := NoStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "no-store, max-age=0", rr.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rr.Header().Get("Pragma"))
}

func TestRequireCapability(t *testing.T) {
	handler := HTMX()(RequireCapability(rbac.CapReferenceReload)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	serve := func(user *User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/geo/recargar", nil)
		if user != nil {
			req = req.WithContext(ContextWithUser(req.Context(), user))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, serve(&User{UID: "a", Roles: []string{"admin"}}).Code)
	require.Equal(t, http.StatusForbidden, serve(&User{UID: "u", Roles: []string{"user"}}).Code)
	require.Equal(t, http.StatusForbidden, serve(nil).Code)
}

func TestRequestInfoAndEnvironment(t *testing.T) {
	var info *RequestInfo
	var env string
	handler := Environment("production")(RequestInfoMiddleware("admin/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, _ = RequestInfoFromContext(r.Context())
		env = EnvironmentFromContext(r.Context())
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/catalogo?page=2", nil))
	require.NotNil(t, info)
	require.Equal(t, "/admin", info.BasePath)
	require.Equal(t, "/admin/catalogo", info.Path)
	require.Equal(t, "page=2", info.RawQuery)
	require.Equal(t, "Producción", env)
	require.Equal(t, "Desarrollo", EnvironmentFromContext(context.Background()))
}
