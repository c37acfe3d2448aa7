package helpers

import (
	"context"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/rbac"
)

// HasCapability reports whether the authenticated user possesses the capability.
// An empty capability is always granted.
func HasCapability(ctx context.Context, capability rbac.Capability) bool {
	if capability == "" {
		return true
	}
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return false
	}
	return rbac.HasCapability(user.Roles, capability)
}

// Capabilities returns the capability set of the authenticated user keyed by name,
// for views that cannot reach the request context.
func Capabilities(ctx context.Context) map[string]bool {
	out := map[string]bool{}
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return out
	}
	for c := range rbac.CapabilitiesForRoles(user.Roles) {
		out[string(c)] = true
	}
	return out
}
