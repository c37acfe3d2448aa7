package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/cabys"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/config"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/observability"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/products"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		// Logger may not exist yet.
		_, _ = os.Stderr.WriteString("admin: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".", "./config")
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, err := observability.NewTracerProvider(ctx, observability.TracingConfig{
		Enabled:       cfg.Telemetry.Enabled,
		Endpoint:      cfg.Telemetry.CollectorEndpoint,
		Insecure:      cfg.Telemetry.Insecure,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
		ServiceName:   cfg.Telemetry.ServiceName,
		Version:       version,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	sessions, err := buildSessions(cfg, logger)
	if err != nil {
		return err
	}

	httpClient := observability.HTTPClient(cfg.Backend.Timeout)
	accounts, productService, err := buildBackend(cfg, httpClient, logger)
	if err != nil {
		return err
	}

	cabysService, closeCache, err := buildCabys(cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer closeCache()
	library := cabys.NewLibrary(cabysService, cfg.Cabys.Timeout)

	catalog, err := buildGeo(cfg, metrics, logger)
	if err != nil {
		return err
	}
	catalog.Activate(ctx)

	srv, err := httpserver.New(httpserver.Config{
		Address:          cfg.Server.Address,
		BasePath:         cfg.Server.BasePath,
		Environment:      cfg.Server.Environment,
		Authenticator:    buildAuthenticator(ctx, cfg, accounts, logger),
		Sessions:         sessions,
		CSRFCookieName:   cfg.Session.CSRFCookie,
		CSRFHeaderName:   cfg.Session.CSRFHeader,
		CSRFCookieSecure: cfg.Session.CookieSecure,
		AccountService:   accounts,
		ProductService:   productService,
		CabysService:     cabysService,
		CabysLibrary:     library,
		Geo:              catalog,
		PageSize:         cfg.Catalog.PageSize,
		Logger:           logger,
		Metrics:          metrics,
		RequestTimeout:   cfg.Server.RequestTimeout,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("admin server listening",
		zap.String("addr", cfg.Server.Address),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("environment", cfg.Server.Environment),
	)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("admin server stopped")
	return nil
}

func buildSessions(cfg *config.Config, logger *zap.Logger) (*session.Manager, error) {
	hashKey, blockKey, err := cfg.Session.SessionKeys()
	if err != nil {
		return nil, err
	}
	if len(hashKey) == 0 {
		// Sessions do not survive restarts with generated keys.
		logger.Warn("session keys not configured; generating ephemeral keys")
		hashKey = securecookie.GenerateRandomKey(32)
		blockKey = securecookie.GenerateRandomKey(32)
	}
	return session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookieSecure: cfg.Session.CookieSecure,
		IdleTimeout:  cfg.Session.IdleTimeout,
		Lifetime:     cfg.Session.Lifetime,
	})
}

func buildBackend(cfg *config.Config, client *http.Client, logger *zap.Logger) (account.Service, products.Service, error) {
	if cfg.Backend.BaseURL == "" {
		logger.Warn("backend base URL not set; using static account and product data")
		return account.NewStaticService(nil), products.NewStaticService(), nil
	}
	accounts, err := account.NewHTTPService(cfg.Backend.BaseURL, client)
	if err != nil {
		return nil, nil, err
	}
	productService, err := products.NewHTTPService(cfg.Backend.BaseURL, client)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("backend configured", zap.String("base_url", cfg.Backend.BaseURL))
	return accounts, productService, nil
}

func buildCabys(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (cabys.Service, func(), error) {
	var upstream cabys.Service
	switch cfg.Cabys.Source {
	case "static":
		upstream = cabys.NewStaticService()
	default:
		svc, err := cabys.NewHTTPService(cfg.Cabys.URL, observability.HTTPClient(cfg.Cabys.Timeout), cabys.WithSeedTerms(cfg.Cabys.SeedTerms))
		if err != nil {
			return nil, nil, err
		}
		upstream = svc
	}

	var (
		cache     cabys.Cache = cabys.NewMemoryCache()
		cacheName             = "cabys_memory"
		closer                = func() {}
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache, cacheName = cabys.NewRedisCache(client), "cabys_redis"
		closer = func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close failed", zap.Error(err))
			}
		}
		logger.Info("cabys cache backed by redis", zap.String("addr", cfg.Redis.Addr))
	}

	cached := cabys.NewCachedService(upstream, cache, cfg.Cabys.CacheTTL, logger).
		OnLookup(func(hit bool) { metrics.CacheLookup(cacheName, hit) })
	return cached, closer, nil
}

func buildGeo(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (*geo.Catalog, error) {
	var source geo.Source
	switch cfg.Geo.Source {
	case "static":
		source = geo.NewStaticSource()
	default:
		arcgis, err := geo.NewArcGISSource(cfg.Geo.URL, observability.HTTPClient(cfg.Geo.LoadTimeout))
		if err != nil {
			return nil, err
		}
		source = arcgis
	}
	return geo.NewCatalog(source,
		geo.WithTimeout(cfg.Geo.LoadTimeout),
		geo.WithLogger(logger),
		geo.WithObserver(func(outcome string, elapsed time.Duration) {
			metrics.ObserveReferenceLoad(cfg.Geo.Source, outcome, elapsed)
		}),
	), nil
}

func buildAuthenticator(ctx context.Context, cfg *config.Config, accounts account.Service, logger *zap.Logger) middleware.Authenticator {
	if projectID := cfg.Firebase.ProjectID; projectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
		if err != nil {
			logger.Error("firebase app init failed", zap.Error(err))
		} else if client, err := app.Auth(ctx); err != nil {
			logger.Error("firebase auth client init failed", zap.Error(err))
		} else {
			logger.Info("firebase authenticator enabled", zap.String("project", projectID))
			return middleware.NewFirebaseAuthenticator(client)
		}
	}
	if cfg.Backend.BaseURL != "" {
		return middleware.NewAccountAuthenticator(accounts)
	}
	logger.Warn("no token verifier configured; accepting any bearer token")
	return middleware.DefaultAuthenticator()
}
