package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()

	clock := &fixedClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	httpOnly := true
	mgr, err := NewManager(Config{
		CookieName:       "test_session",
		HashKey:          []byte("12345678901234567890123456789012"),
		BlockKey:         []byte("abcdefghijklmnopqrstuv0123456789"),
		CookiePath:       "/",
		CookieHTTPOnly:   &httpOnly,
		IdleTimeout:      10 * time.Minute,
		Lifetime:         2 * time.Hour,
		RememberLifetime: 48 * time.Hour,
		Now:              clock.Now,
	})
	require.NoError(t, err)
	return mgr, clock
}

func roundTrip(t *testing.T, mgr *Manager, sess *Session) *Session {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, sess))
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	require.NotNil(t, cookie, "expected session cookie to be set")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	loaded, err := mgr.Load(req)
	require.NoError(t, err)
	return loaded
}

func TestManager_NewSessionLifecycle(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID())
	require.True(t, sess.CreatedAt().Equal(clock.current))

	sess.SetUser(&User{UID: "user-1", Email: "test@example.com", Roles: []string{"admin"}, CompanyID: "3", Token: "tok"})
	sess.SetRememberMe(true)
	token, err := sess.EnsureCSRFToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	clock.current = clock.current.Add(5 * time.Minute)
	sess2 := roundTrip(t, mgr, sess)
	require.Equal(t, "test@example.com", sess2.User().Email)
	require.Equal(t, "3", sess2.User().CompanyID)
	require.Equal(t, "tok", sess2.User().Token)
	require.True(t, sess2.RememberMe())
	require.Equal(t, token, sess2.CSRFToken())
	require.False(t, sess2.Dirty())
}

func TestManager_IdleTimeout(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, sess))
	cookie := findCookie(rec.Result().Cookies(), "test_session")

	clock.current = clock.current.Add(20 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	_, err = mgr.Load(req)
	require.True(t, errors.Is(err, ErrExpired), "expected ErrExpired, got %v", err)
}

func TestManager_RememberMeSurvivesIdle(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess := mgr.New()
	sess.SetRememberMe(true)
	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, sess))
	cookie := findCookie(rec.Result().Cookies(), "test_session")

	clock.current = clock.current.Add(3 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	loaded, err := mgr.Load(req)
	require.NoError(t, err)
	require.True(t, loaded.RememberMe())
}

func TestManager_Destroy(t *testing.T) {
	mgr, _ := newTestManager(t)

	sess, _ := mgr.Load(httptest.NewRequest(http.MethodGet, "/admin", nil))
	sess.Destroy()
	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, sess))
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	require.NotNil(t, cookie)
	require.Equal(t, -1, cookie.MaxAge)
}

func TestManager_TamperedCookieStartsFresh(t *testing.T) {
	mgr, _ := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "garbage"})
	sess, err := mgr.Load(req)
	require.NoError(t, err)
	require.Nil(t, sess.User())
	require.True(t, sess.Dirty())
}

func TestNewManagerRejectsBadBlockKey(t *testing.T) {
	_, err := NewManager(Config{HashKey: []byte("k"), BlockKey: []byte("short")})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSession_ValuesAndFlash(t *testing.T) {
	mgr, _ := newTestManager(t)

	type draft struct {
		Currency string `json:"moneda"`
		Term     int    `json:"plazo"`
	}
	sess := mgr.New()
	require.NoError(t, sess.Put("purchase", draft{Currency: "colones", Term: 30}))
	sess.SetFlash(FlashSuccess, "Guardado")

	loaded := roundTrip(t, mgr, sess)

	var got draft
	ok, err := loaded.Get("purchase", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, draft{Currency: "colones", Term: 30}, got)
	require.Equal(t, []string{"purchase"}, loaded.Keys())

	ok, err = loaded.Get("missing", &got)
	require.NoError(t, err)
	require.False(t, ok)

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	require.Equal(t, FlashSuccess, flash.Kind)
	require.Equal(t, "Guardado", flash.Message)
	require.Nil(t, loaded.PopFlash())

	loaded.Delete("purchase")
	require.Empty(t, loaded.Keys())
}

func TestSession_SetUserRotatesCSRF(t *testing.T) {
	mgr, _ := newTestManager(t)

	sess := mgr.New()
	first, err := sess.EnsureCSRFToken()
	require.NoError(t, err)

	sess.SetUser(&User{UID: "u-1"})
	second, err := sess.EnsureCSRFToken()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	sess.SetUser(&User{UID: "u-1", Name: "Ana"})
	require.Equal(t, second, sess.CSRFToken())
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
