// Package config loads the admin server settings from config.toml and
// MANAGERSYNC_ environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MANAGERSYNC_SERVER_ADDRESS.
const EnvPrefix = "MANAGERSYNC"

// Config holds all admin server configuration.
type Config struct {
	Server    ServerConfig
	Session   SessionConfig
	Backend   BackendConfig
	Geo       GeoConfig
	Cabys     CabysConfig
	Catalog   CatalogConfig
	Redis     RedisConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Firebase  FirebaseConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address         string
	BasePath        string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// SessionConfig holds cookie codec keys. Keys are hex encoded.
type SessionConfig struct {
	CookieName   string
	HashKey      string
	BlockKey     string
	CookieSecure bool
	IdleTimeout  time.Duration
	Lifetime     time.Duration
	CSRFCookie   string
	CSRFHeader   string
}

// BackendConfig points at the ManagerSync REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// GeoConfig controls the administrative-division reference load.
type GeoConfig struct {
	// Source is "arcgis" or "static".
	Source      string
	URL         string
	LoadTimeout time.Duration
}

// CabysConfig controls the CABYS lookup.
type CabysConfig struct {
	// Source is "hacienda" or "static".
	Source    string
	URL       string
	Timeout   time.Duration
	SeedTerms []string
	CacheTTL  time.Duration
}

// CatalogConfig controls the paginated catalog browser.
type CatalogConfig struct {
	PageSize int
}

// RedisConfig enables the CABYS search cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// FirebaseConfig enables Firebase ID token verification when ProjectID is set.
type FirebaseConfig struct {
	ProjectID string
}

// ValidationError lists every invalid setting.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config: invalid settings: " + strings.Join(e.Problems, "; ")
}

// Load reads config.toml from the given directories (the working directory
// when none are given), then applies env overrides, defaults and validation.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			BasePath:        v.GetString("server.base_path"),
			Environment:     v.GetString("server.environment"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			RequestTimeout:  v.GetDuration("server.request_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Session: SessionConfig{
			CookieName:   v.GetString("session.cookie_name"),
			HashKey:      v.GetString("session.hash_key"),
			BlockKey:     v.GetString("session.block_key"),
			CookieSecure: v.GetBool("session.cookie_secure"),
			IdleTimeout:  v.GetDuration("session.idle_timeout"),
			Lifetime:     v.GetDuration("session.lifetime"),
			CSRFCookie:   v.GetString("session.csrf_cookie"),
			CSRFHeader:   v.GetString("session.csrf_header"),
		},
		Backend: BackendConfig{
			BaseURL: v.GetString("backend.base_url"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Geo: GeoConfig{
			Source:      v.GetString("geo.source"),
			URL:         v.GetString("geo.url"),
			LoadTimeout: v.GetDuration("geo.load_timeout"),
		},
		Cabys: CabysConfig{
			Source:    v.GetString("cabys.source"),
			URL:       v.GetString("cabys.url"),
			Timeout:   v.GetDuration("cabys.timeout"),
			SeedTerms: v.GetStringSlice("cabys.seed_terms"),
			CacheTTL:  v.GetDuration("cabys.cache_ttl"),
		},
		Catalog: CatalogConfig{
			PageSize: v.GetInt("catalog.page_size"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		Firebase: FirebaseConfig{
			ProjectID: v.GetString("firebase.project_id"),
		},
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = "/admin"
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 25 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "managersync_session"
	}
	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = 30 * time.Minute
	}
	if cfg.Session.Lifetime == 0 {
		cfg.Session.Lifetime = 12 * time.Hour
	}
	if cfg.Session.CSRFCookie == "" {
		cfg.Session.CSRFCookie = "managersync_csrf"
	}
	if cfg.Session.CSRFHeader == "" {
		cfg.Session.CSRFHeader = "X-CSRF-Token"
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 15 * time.Second
	}
	if cfg.Geo.Source == "" {
		cfg.Geo.Source = "arcgis"
	}
	if cfg.Geo.LoadTimeout == 0 {
		cfg.Geo.LoadTimeout = 20 * time.Second
	}
	if cfg.Cabys.Source == "" {
		cfg.Cabys.Source = "hacienda"
	}
	if cfg.Cabys.Timeout == 0 {
		cfg.Cabys.Timeout = 15 * time.Second
	}
	if cfg.Cabys.CacheTTL == 0 {
		cfg.Cabys.CacheTTL = 6 * time.Hour
	}
	if cfg.Catalog.PageSize == 0 {
		cfg.Catalog.PageSize = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "managersync-admin"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
}

func (c *Config) validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !strings.HasPrefix(c.Server.BasePath, "/") {
		add("server.base_path must start with /")
	}
	switch c.Geo.Source {
	case "arcgis", "static":
	default:
		add("geo.source must be arcgis or static, got %q", c.Geo.Source)
	}
	switch c.Cabys.Source {
	case "hacienda", "static":
	default:
		add("cabys.source must be hacienda or static, got %q", c.Cabys.Source)
	}
	urls := []struct{ key, raw string }{
		{"backend.base_url", c.Backend.BaseURL},
		{"geo.url", c.Geo.URL},
		{"cabys.url", c.Cabys.URL},
	}
	for _, entry := range urls {
		if entry.raw == "" {
			continue
		}
		if u, err := url.Parse(entry.raw); err != nil || u.Scheme == "" || u.Host == "" {
			add("%s must be an absolute URL", entry.key)
		}
	}
	if c.Catalog.PageSize < 0 {
		add("catalog.page_size cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		add("telemetry.sampling_ratio must be between 0 and 1")
	}
	if c.Session.HashKey != "" {
		if _, err := hex.DecodeString(c.Session.HashKey); err != nil {
			add("session.hash_key must be hex encoded")
		}
	}
	if c.Session.BlockKey != "" {
		key, err := hex.DecodeString(c.Session.BlockKey)
		switch {
		case err != nil:
			add("session.block_key must be hex encoded")
		case len(key) != 16 && len(key) != 24 && len(key) != 32:
			add("session.block_key must decode to 16, 24 or 32 bytes")
		}
	}
	if c.IsProduction() && c.Session.HashKey == "" {
		add("session.hash_key is required in production")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// SessionKeys decodes the hex session keys. Empty keys decode to nil.
func (c SessionConfig) SessionKeys() (hashKey, blockKey []byte, err error) {
	if c.HashKey != "" {
		if hashKey, err = hex.DecodeString(c.HashKey); err != nil {
			return nil, nil, fmt.Errorf("config: decode session.hash_key: %w", err)
		}
	}
	if c.BlockKey != "" {
		if blockKey, err = hex.DecodeString(c.BlockKey); err != nil {
			return nil, nil, fmt.Errorf("config: decode session.block_key: %w", err)
		}
	}
	return hashKey, blockKey, nil
}
