package ui

import (
	"net/http"

	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/navigation"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/rbac"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/dashboard"
)

var cardDescriptions = map[string]string{
	"cabys":     "Consulte el catálogo de bienes y servicios por término, categoría y página.",
	"products":  "Registre y mantenga los productos de su empresa.",
	"issuer":    "Datos del emisor del comprobante.",
	"provider":  "Datos del proveedor de la compra.",
	"purchases": "Encabezado de la compra en preparación.",
	"account":   "Perfil y preferencias de su usuario.",
}

// Dashboard renders the landing page. Opening it starts the geo load if it
// has not run yet.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	h.geo.Activate(ctx)

	base := custommw.BasePathFromContext(ctx)
	data := dashboard.PageData{
		UserName: firstNonEmpty(user.Name, user.Email, user.UID),
		Geo:      h.geoStatus(r, user),
		Draft:    dashboard.NewDraftStatus(loadDraft(ctx), navigation.Join(base, "/purchases/new")),
	}
	items, loadedAt, err := h.library.Status()
	data.Cabys = dashboard.NewCabysStatus(items, loadedAt, err, h.now())

	for _, group := range navigation.Visible(navigation.BuildMenu(base), user.Roles, "") {
		for _, item := range group.Items {
			if item.Key == "dashboard" {
				continue
			}
			data.Cards = append(data.Cards, dashboard.Card{Title: item.Label, Description: cardDescriptions[item.Key], Href: item.Href})
		}
	}
	render(w, r, dashboard.Index(data))
}

// GeoStatus renders the reference status panel, polled while a load runs.
func (h *Handlers) GeoStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	render(w, r, dashboard.GeoPanel(h.geoStatus(r, user)))
}

// GeoReload restarts the geo load on demand.
func (h *Handlers) GeoReload(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger(ctx).Info("geo reload requested")
	h.geo.Reload(ctx)

	if !custommw.IsHTMXRequest(ctx) {
		custommw.Redirect(w, r, pathFor(ctx, "/"))
		return
	}
	custommw.Trigger(w, "geo:reload")
	render(w, r, dashboard.GeoPanel(h.geoStatus(r, user)))
}

func (h *Handlers) geoStatus(r *http.Request, user *custommw.User) dashboard.GeoStatus {
	ctx := r.Context()
	status := dashboard.NewGeoStatus(h.geo, h.now())
	status.CanReload = rbac.HasCapability(user.Roles, rbac.CapReferenceReload)
	status.ReloadPath = pathFor(ctx, "/geo/reload")
	status.StatusPath = pathFor(ctx, "/geo/status")
	status.CSRFToken = custommw.CSRFTokenFromContext(ctx)
	return status
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
