package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/cabys"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/products"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthenticator overrides the authenticator used by the admin server.
func WithAuthenticator(auth middleware.Authenticator) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = auth
	}
}

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithAccountService wires a custom account service implementation.
func WithAccountService(service account.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.AccountService = service
	}
}

// WithProductService wires a custom product service implementation.
func WithProductService(service products.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.ProductService = service
	}
}

// WithCabysService overrides the CABYS lookup and the preloaded library built on it.
func WithCabysService(service cabys.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.CabysService = service
		cfg.CabysLibrary = cabys.NewLibrary(service, time.Second)
	}
}

// WithGeoSource backs the reference catalog with source.
func WithGeoSource(source geo.Source) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Geo = geo.NewCatalog(source, geo.WithTimeout(time.Second))
	}
}

// WithGeoCatalog shares catalog with the server so tests can drive its loads.
func WithGeoCatalog(catalog *geo.Catalog) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Geo = catalog
	}
}

// WithPageSize sets the catalog page size.
func WithPageSize(n int) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.PageSize = n
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := session.NewManager(session.Config{
		HashKey:  []byte("0123456789abcdef0123456789abcdef"),
		BlockKey: []byte("0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	cabysService := cabys.NewStaticService()
	cfg := httpserver.Config{
		Address:        ":0",
		BasePath:       "/admin",
		LoginPath:      "",
		Environment:    "development",
		CSRFCookieName: "csrf_token",
		CSRFHeaderName: "X-CSRF-Token",
		Authenticator:  middleware.DefaultAuthenticator(),
		Sessions:       sessions,
		AccountService: account.NewStaticService(nil),
		ProductService: products.NewStaticService(),
		CabysService:   cabysService,
		CabysLibrary:   cabys.NewLibrary(cabysService, time.Second),
		Geo:            geo.NewCatalog(geo.NewStaticSource(), geo.WithTimeout(time.Second)),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
