// Package dashboard renders the landing page and reference-data status.
package dashboard

import (
	"embed"
	"time"

	"github.com/a-h/templ"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/purchases"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/layout"
)

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("dashboard", files)

// PageData is the dashboard payload.
type PageData struct {
	UserName string
	Cards    []Card
	Geo      GeoStatus
	Cabys    CabysStatus
	Draft    DraftStatus
}

// Card links to a section the user may open.
type Card struct {
	Title       string
	Description string
	Href        string
}

// GeoStatus summarises the administrative-division reference load.
type GeoStatus struct {
	State      geo.State
	Label      string
	Tone       string
	Provinces  int
	Districts  int
	LoadedAt   string
	Error      string
	Loading    bool
	CanReload  bool
	ReloadPath string
	StatusPath string
	CSRFToken  string
}

// CabysStatus summarises the preloaded CABYS catalogue.
type CabysStatus struct {
	Items    int
	LoadedAt string
	Error    string
}

// DraftStatus reports which purchase sections are captured.
type DraftStatus struct {
	HeaderOK bool
	Issuer   bool
	Provider bool
	Ready    bool
	Href     string
}

// GeoSnapshot is the subset of geo.Catalog the status needs.
type GeoSnapshot interface {
	State() geo.State
	Index() *geo.Index
	Err() error
	LoadedAt() time.Time
}

// NewGeoStatus describes catalog as seen at now.
func NewGeoStatus(catalog GeoSnapshot, now time.Time) GeoStatus {
	status := GeoStatus{State: geo.StateIdle}
	if catalog == nil {
		status.Label, status.Tone = "Sin configurar", "warning"
		return status
	}
	status.State = catalog.State()
	idx := catalog.Index()
	status.Provinces = len(idx.Provinces())
	status.Districts = idx.Len()
	status.LoadedAt = helpers.Relative(catalog.LoadedAt(), now)

	switch status.State {
	case geo.StateReady:
		status.Label, status.Tone = "Disponible", "success"
	case geo.StateLoading:
		status.Label, status.Tone = "Cargando…", "info"
		status.Loading = true
	case geo.StateFailed:
		status.Label, status.Tone = "Error al cargar", "danger"
		if err := catalog.Err(); err != nil {
			status.Error = "No se pudieron cargar las ubicaciones. Intente de nuevo."
		}
	default:
		status.Label, status.Tone = "Pendiente", "warning"
	}
	return status
}

// NewCabysStatus describes the preloaded CABYS items.
func NewCabysStatus(items int, loadedAt time.Time, err error, now time.Time) CabysStatus {
	status := CabysStatus{Items: items, LoadedAt: helpers.Relative(loadedAt, now)}
	if err != nil {
		status.Error = "No se pudo cargar el catálogo CABYS."
	}
	return status
}

// NewDraftStatus summarises draft.
func NewDraftStatus(draft purchases.Draft, href string) DraftStatus {
	return DraftStatus{
		HeaderOK: draft.HeaderOK,
		Issuer:   !draft.Issuer.Empty(),
		Provider: !draft.Provider.Empty(),
		Ready:    draft.Ready(),
		Href:     href,
	}
}

// Index renders the dashboard page.
func Index(data PageData) templ.Component {
	return layout.Page("Inicio", views.Component("page", data))
}

// GeoPanel renders the reference status panel alone.
func GeoPanel(status GeoStatus) templ.Component {
	return views.Component("geo-status", status)
}
