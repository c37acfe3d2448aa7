package helpers

import (
	"context"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/navigation"
)

// RequestPath returns the current request URL path.
func RequestPath(ctx context.Context) string {
	return navigation.Normalize(middleware.RequestPathFromContext(ctx))
}

// BasePath returns the configured admin base path.
func BasePath(ctx context.Context) string {
	return navigation.Normalize(middleware.BasePathFromContext(ctx))
}

// Link joins suffix onto the request's base path.
func Link(ctx context.Context, suffix string) string {
	return navigation.Join(BasePath(ctx), suffix)
}

// NavActive reports whether the current request should highlight the menu item.
func NavActive(ctx context.Context, pattern string, prefix bool) bool {
	if pattern == "" {
		return false
	}
	return navigation.Matches(RequestPath(ctx), pattern, prefix)
}
