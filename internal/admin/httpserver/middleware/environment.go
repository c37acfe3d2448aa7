package middleware

import (
	"context"
	"net/http"
	"strings"
)

type environmentContextKey struct{}

const defaultEnvironment = "Desarrollo"

// EnvironmentLabel maps a configured environment name to the badge shown in the chrome.
func EnvironmentLabel(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return "Producción"
	case "staging", "stg":
		return "Pruebas"
	case "":
		return defaultEnvironment
	case "development", "dev", "local":
		return defaultEnvironment
	default:
		return env
	}
}

// Environment attaches the deployment environment label to the request context.
func Environment(env string) func(http.Handler) http.Handler {
	label := EnvironmentLabel(env)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), environmentContextKey{}, label)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnvironmentFromContext returns the label registered for the current request.
func EnvironmentFromContext(ctx context.Context) string {
	if ctx == nil {
		return defaultEnvironment
	}
	if value, ok := ctx.Value(environmentContextKey{}).(string); ok && value != "" {
		return value
	}
	return defaultEnvironment
}
