package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appsession "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
)

type sessionTestClock struct {
	now time.Time
}

func (c *sessionTestClock) Now() time.Time {
	return c.now
}

func newSessionStoreForTest(t *testing.T, clock *sessionTestClock) *appsession.Manager {
	t.Helper()
	httpOnly := true
	store, err := appsession.NewManager(appsession.Config{
		CookieName:       "test_session",
		HashKey:          []byte("12345678901234567890123456789012"),
		BlockKey:         []byte("abcdefghijklmnopqrstuvwxyzABCDEF"),
		CookiePath:       "/admin",
		CookieHTTPOnly:   &httpOnly,
		IdleTimeout:      5 * time.Minute,
		Lifetime:         time.Hour,
		RememberLifetime: 24 * time.Hour,
		Now:              clock.Now,
	})
	require.NoError(t, err)
	return store
}

func TestSessionMiddlewareLifecycle(t *testing.T) {
	clock := &sessionTestClock{now: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}
	store := newSessionStoreForTest(t, clock)

	var ids []string
	handler := Session(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		ids = append(ids, sess.ID())
		w.WriteHeader(http.StatusOK)
	}))

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Len(t, ids, 1)
	require.NotEmpty(t, ids[0])
	cookie := findCookie(rec1.Result().Cookies(), "test_session")
	require.NotNil(t, cookie)

	clock.now = clock.now.Add(2 * time.Minute)
	req2 := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req2.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	require.Equal(t, ids[0], ids[1])
	refreshed := findCookie(rec2.Result().Cookies(), "test_session")
	require.NotNil(t, refreshed, "active sessions slide the idle window")

	// Four minutes after the second request is within the refreshed window.
	clock.now = clock.now.Add(4 * time.Minute)
	req3 := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req3.AddCookie(refreshed)
	handler.ServeHTTP(httptest.NewRecorder(), req3)
	require.Equal(t, ids[0], ids[2])

	clock.now = clock.now.Add(15 * time.Minute)
	req4 := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req4.AddCookie(refreshed)
	rec4 := httptest.NewRecorder()
	handler.ServeHTTP(rec4, req4)
	require.Len(t, ids, 4)
	require.NotEqual(t, ids[2], ids[3], "idle sessions are replaced")
	require.NotEmpty(t, rec4.Header().Values("Set-Cookie"))
}

func TestAuthTrustsSessionUser(t *testing.T) {
	clock := &sessionTestClock{now: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}
	store := newSessionStoreForTest(t, clock)
	auth := &mockAuthenticator{token: "valid", user: &User{UID: "u-1", Name: "Ana", Roles: []string{"user"}, CompanyID: "3"}}

	var seen *User
	handler := Session(store)(HTMX()(Auth(auth, "/admin/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))))

	req1 := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req1.Header.Set("Authorization", "Bearer valid")
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	require.Equal(t, http.StatusOK, rec1.Code)
	require.Equal(t, 1, auth.calls)
	cookie := findCookie(rec1.Result().Cookies(), "test_session")
	require.NotNil(t, cookie)

	req2 := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req2.Header.Set("Authorization", "Bearer valid")
	req2.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusOK, rec2.Code)
	require.Equal(t, 1, auth.calls, "session user is trusted for the same token")
	require.Equal(t, "Ana", seen.Name)
	require.Equal(t, "3", seen.CompanyID)

	// A different token forces re-authentication.
	req3 := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req3.Header.Set("Authorization", "Bearer other")
	req3.AddCookie(cookie)
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, req3)
	require.Equal(t, 2, auth.calls)
	require.Equal(t, http.StatusFound, rec3.Code)
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
