package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/observability"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/rbac"
)

// RequireRole aborts the request with 403 Forbidden when the authenticated user
// lacks any of the provided roles.
func RequireRole(required ...rbac.Role) func(http.Handler) http.Handler {
	roles := rbac.Roles(required)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || (len(roles) > 0 && !rbac.HasAnyRole(user.Roles, roles)) {
				forbidden(w, r, "role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability aborts the request when the authenticated user lacks capability.
func RequireCapability(capability rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !rbac.HasCapability(user.Roles, capability) {
				forbidden(w, r, string(capability))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(w http.ResponseWriter, r *http.Request, required string) {
	observability.FromContext(r.Context()).Info("access denied",
		zap.String("path", r.URL.Path),
		zap.String("required", required),
	)
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Refresh", "true")
	}
	http.Error(w, "No tiene permisos para esta acción", http.StatusForbidden)
}
