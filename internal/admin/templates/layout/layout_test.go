package layout

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	appsession "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
)

func body(text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p data-body>`+text+`</p>`)
		return err
	})
}

func renderWithSession(t *testing.T, c templ.Component, prepare func(*appsession.Session)) *goquery.Document {
	t.Helper()

	store, err := appsession.NewManager(appsession.Config{
		HashKey:     []byte("0123456789abcdef0123456789abcdef"),
		IdleTimeout: time.Hour,
		Lifetime:    time.Hour,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	handler := middleware.Session(store)(middleware.RequestInfoMiddleware("/admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if sess, ok := middleware.SessionFromContext(ctx); ok && prepare != nil {
			prepare(sess)
		}
		ctx = middleware.ContextWithUser(ctx, &middleware.User{UID: "u", Name: "Ana", Roles: []string{"admin"}})
		require.NoError(t, c.Render(ctx, &buf))
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/catalog", nil))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestPageRendersChromeAndFlash(t *testing.T) {
	t.Parallel()

	doc := renderWithSession(t, Page("Catálogo", body("hola")), func(s *appsession.Session) {
		s.SetFlash(appsession.FlashSuccess, "Producto guardado")
	})

	require.Equal(t, "Catálogo · ManagerSync", doc.Find("title").Text())
	require.Equal(t, 1, doc.Find("[data-sidebar]").Length())
	require.Equal(t, 1, doc.Find("[data-topbar]").Length())
	require.Equal(t, "hola", doc.Find("#content [data-body]").Text())
	require.Equal(t, "Producto guardado", doc.Find("[data-flash]").Text())
	require.Equal(t, "page", doc.Find(`a[href="/admin/catalog"]`).AttrOr("aria-current", ""))
}

func TestBareOmitsChrome(t *testing.T) {
	t.Parallel()

	doc := renderWithSession(t, Bare("Ingresar", body("login")), nil)
	require.Equal(t, 0, doc.Find("[data-sidebar]").Length())
	require.Equal(t, 0, doc.Find("[data-flash]").Length())
	require.Equal(t, "X-CSRF-Token", doc.Find(`meta[name="csrf-header"]`).AttrOr("content", ""))
}
