// Package layout wraps page bodies in the admin document shell.
package layout

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/navigation"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/partials"
)

// AssetsPath is where the embedded static files are served.
const AssetsPath = "/public/static"

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("layout", files)

// Flash is a one-time notice shown above the body.
type Flash struct {
	Tone    string
	Message string
}

type shellData struct {
	Title      string
	CSRFToken  string
	CSRFHeader string
	Assets     string
	Sidebar    template.HTML
	Topbar     template.HTML
	Flash      *Flash
	Body       template.HTML
	Chrome     bool
}

// Page renders body inside the authenticated shell with sidebar and topbar.
// A pending session flash is consumed.
func Page(title string, body templ.Component) templ.Component {
	return render(title, body, true)
}

// Bare renders body without navigation chrome, for the login and sign-up pages.
func Bare(title string, body templ.Component) templ.Component {
	return render(title, body, false)
}

func render(title string, body templ.Component, chrome bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		data := shellData{
			Title:      title,
			CSRFToken:  middleware.CSRFTokenFromContext(ctx),
			CSRFHeader: middleware.CSRFHeaderFromContext(ctx),
			Assets:     AssetsPath,
			Chrome:     chrome,
			Flash:      popFlash(ctx),
		}
		var err error
		if chrome {
			if data.Sidebar, err = templ.ToGoHTML(ctx, partials.Sidebar(navigation.BuildMenu(helpers.BasePath(ctx)))); err != nil {
				return err
			}
			if data.Topbar, err = templ.ToGoHTML(ctx, partials.Topbar()); err != nil {
				return err
			}
		}
		if data.Body, err = templ.ToGoHTML(ctx, body); err != nil {
			return err
		}
		return views.Component("layout", data).Render(ctx, w)
	})
}

func popFlash(ctx context.Context) *Flash {
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return nil
	}
	f := sess.PopFlash()
	if f == nil || f.Message == "" {
		return nil
	}
	tone := "success"
	if f.Kind == "error" {
		tone = "danger"
	}
	return &Flash{Tone: tone, Message: f.Message}
}
