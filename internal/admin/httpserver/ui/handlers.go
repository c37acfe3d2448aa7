package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/cabys"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/observability"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/products"
)

const defaultCatalogPageSize = 10

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	AccountService account.Service
	ProductService products.Service
	CabysService   cabys.Service
	CabysLibrary   *cabys.Library
	Geo            *geo.Catalog
	PageSize       int
	Now            func() time.Time
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	accounts account.Service
	products products.Service
	cabys    cabys.Service
	library  *cabys.Library
	geo      *geo.Catalog
	pageSize int
	now      func() time.Time
}

// NewHandlers wires the UI handler set. Missing services fall back to the
// in-memory implementations.
func NewHandlers(deps Dependencies) *Handlers {
	h := &Handlers{
		accounts: deps.AccountService,
		products: deps.ProductService,
		cabys:    deps.CabysService,
		library:  deps.CabysLibrary,
		geo:      deps.Geo,
		pageSize: deps.PageSize,
		now:      deps.Now,
	}
	if h.accounts == nil {
		h.accounts = account.NewStaticService(nil)
	}
	if h.products == nil {
		h.products = products.NewStaticService()
	}
	if h.cabys == nil {
		h.cabys = cabys.NewStaticService()
	}
	if h.library == nil {
		h.library = cabys.NewLibrary(h.cabys, 0)
	}
	if h.geo == nil {
		h.geo = geo.NewCatalog(geo.NewStaticSource())
	}
	if h.pageSize <= 0 {
		h.pageSize = defaultCatalogPageSize
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	renderStatus(w, r, http.StatusOK, component)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}

// requireUser returns the signed-in user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*custommw.User, bool) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

func logger(ctx context.Context) *zap.Logger {
	return observability.FromContext(ctx)
}
