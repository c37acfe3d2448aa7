// Package partials renders the shared admin chrome.
package partials

import (
	"context"
	"embed"
	"io"

	"github.com/a-h/templ"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/navigation"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
)

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("partials", files)

// SidebarData is the filtered menu for the current user.
type SidebarData struct {
	Groups []navigation.MenuGroup
}

// TopbarData describes the signed-in user and environment.
type TopbarData struct {
	Environment string
	Badge       string
	UserName    string
	UserEmail   string
	AccountPath string
	LogoutPath  string
	CSRFToken   string
}

// Sidebar renders menu filtered by the roles of the user in ctx, highlighting
// the current route.
func Sidebar(menu []navigation.MenuGroup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return views.Component("sidebar", BuildSidebarData(ctx, menu)).Render(ctx, w)
	})
}

// BuildSidebarData filters menu for the request in ctx.
func BuildSidebarData(ctx context.Context, menu []navigation.MenuGroup) SidebarData {
	var roles []string
	if user, ok := middleware.UserFromContext(ctx); ok {
		roles = user.Roles
	}
	return SidebarData{Groups: navigation.Visible(menu, roles, helpers.RequestPath(ctx))}
}

// Topbar renders the environment badge and the user menu.
func Topbar() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return views.Component("topbar", BuildTopbarData(ctx)).Render(ctx, w)
	})
}

// BuildTopbarData reads the user and environment from ctx.
func BuildTopbarData(ctx context.Context) TopbarData {
	env := middleware.EnvironmentFromContext(ctx)
	data := TopbarData{
		Environment: env,
		Badge:       environmentBadge(env),
		AccountPath: helpers.Link(ctx, "/account"),
		LogoutPath:  helpers.Link(ctx, "/logout"),
		CSRFToken:   middleware.CSRFTokenFromContext(ctx),
	}
	if user, ok := middleware.UserFromContext(ctx); ok {
		data.UserName = user.Name
		if data.UserName == "" {
			data.UserName = user.UID
		}
		data.UserEmail = user.Email
	}
	return data
}

func environmentBadge(label string) string {
	switch label {
	case "Producción":
		return "PROD"
	case "Pruebas":
		return "PRU"
	case "Desarrollo":
		return "DEV"
	default:
		r := []rune(label)
		if len(r) > 4 {
			r = r[:4]
		}
		return string(r)
	}
}
