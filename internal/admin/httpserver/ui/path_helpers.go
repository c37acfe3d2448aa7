package ui

import (
	"context"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/navigation"
)

func pathFor(ctx context.Context, suffix string) string {
	return navigation.Join(middleware.BasePathFromContext(ctx), suffix)
}
