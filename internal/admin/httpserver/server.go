package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/cabys"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/ui"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/issuer"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/observability"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/products"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/rbac"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/public"
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address          string
	BasePath         string
	LoginPath        string
	Environment      string
	Authenticator    custommw.Authenticator
	Sessions         custommw.SessionStore
	CSRFCookieName   string
	CSRFCookiePath   string
	CSRFCookieSecure bool
	CSRFHeaderName   string

	AccountService account.Service
	ProductService products.Service
	CabysService   cabys.Service
	CabysLibrary   *cabys.Library
	Geo            *geo.Catalog
	PageSize       int

	Logger         *zap.Logger
	Metrics        *observability.Metrics
	RequestTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.RequestLogger(logger, cfg.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(requestTimeout))

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))
	router.Get("/healthz", healthz)
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}

	basePath := custommw.NormaliseBasePath(firstNonEmpty(cfg.BasePath, "/admin"))
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.DefaultAuthenticator()
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("httpserver: session store is required")
	}

	csrfCfg := custommw.CSRFConfig{
		CookieName: cfg.CSRFCookieName,
		CookiePath: firstNonEmpty(cfg.CSRFCookiePath, basePath),
		HeaderName: cfg.CSRFHeaderName,
		Secure:     cfg.CSRFCookieSecure,
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		AccountService: cfg.AccountService,
		ProductService: cfg.ProductService,
		CabysService:   cfg.CabysService,
		CabysLibrary:   cfg.CabysLibrary,
		Geo:            cfg.Geo,
		PageSize:       cfg.PageSize,
	})

	mountAdminRoutes(router, basePath, routeOptions{
		Authenticator: authenticator,
		Accounts:      cfg.AccountService,
		Sessions:      cfg.Sessions,
		LoginPath:     loginPath,
		Environment:   cfg.Environment,
		CSRF:          csrfCfg,
		Handlers:      handlers,
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      observability.HTTPHandler(router, "admin"),
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  60 * time.Second,
	}, nil
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	Accounts      account.Service
	Sessions      custommw.SessionStore
	LoginPath     string
	Environment   string
	CSRF          custommw.CSRFConfig
	Handlers      *ui.Handlers
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	h := opts.Handlers
	authHandlers := newAuthHandlers(opts.Authenticator, opts.Accounts, base, opts.LoginPath)
	capability := custommw.RequireCapability

	router.Route(base, func(r chi.Router) {
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(custommw.Environment(opts.Environment))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.CSRF(opts.CSRF))

		r.Get("/login", authHandlers.LoginForm)
		r.Post("/login", authHandlers.LoginSubmit)
		r.Post("/logout", authHandlers.Logout)
		r.Get("/register", authHandlers.RegisterForm)
		r.Post("/register", authHandlers.RegisterSubmit)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))

			r.With(capability(rbac.CapDashboardView)).Get("/", h.Dashboard)

			r.Group(func(r chi.Router) {
				r.Use(capability(rbac.CapCatalogBrowse))
				r.Get("/catalog", h.CatalogPage)
				RegisterFragment(r, "/catalog/table", h.CatalogTable)
				RegisterFragment(r, "/catalog/search", h.CabysSearch)
			})

			r.Route("/products", func(r chi.Router) {
				r.Use(capability(rbac.CapProductsView))
				r.Get("/", h.ProductsPage)
				RegisterFragment(r, "/table", h.ProductsTable)

				r.Group(func(r chi.Router) {
					r.Use(capability(rbac.CapProductsManage))
					r.Get("/new", h.ProductNew)
					r.Post("/", h.ProductCreate)
					r.Post("/cabys", h.ProductCabys)
					r.Get("/{productID}/edit", h.ProductEdit)
					r.Post("/{productID}", h.ProductUpdate)
					r.Delete("/{productID}", h.ProductDelete)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(capability(rbac.CapPartiesManage))
				r.Get("/issuer", h.PartyForm(issuer.KindIssuer))
				r.Post("/issuer", h.PartySubmit(issuer.KindIssuer))
				r.Get("/provider", h.PartyForm(issuer.KindProvider))
				r.Post("/provider", h.PartySubmit(issuer.KindProvider))
				r.Post("/geo/address", h.GeoAddress)
			})

			RegisterFragment(r, "/geo/status", h.GeoStatus)
			r.With(capability(rbac.CapReferenceReload)).Post("/geo/reload", h.GeoReload)

			r.Group(func(r chi.Router) {
				r.Use(capability(rbac.CapPurchasesCreate))
				r.Get("/purchases/new", h.PurchasePage)
				r.Post("/purchases/new", h.PurchaseSubmit)
			})

			r.Group(func(r chi.Router) {
				r.Use(capability(rbac.CapAccountSelf))
				r.Get("/account", h.AccountPage)
				r.Post("/account", h.AccountUpdate)
				r.Post("/account/delete", h.AccountDelete)
			})
		})
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}
