package navigation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/rbac"
)

func keys(groups []MenuGroup) []string {
	var out []string
	for _, g := range groups {
		for _, item := range g.Items {
			out = append(out, item.Key)
		}
	}
	return out
}

func TestBuildMenuLinksUnderBasePath(t *testing.T) {
	t.Parallel()

	menu := BuildMenu("/admin/")
	require.Equal(t, "/admin", menu[0].Items[0].Href)
	require.Equal(t, "/admin/catalog", menu[1].Items[0].Href)

	root := BuildMenu("/")
	require.Equal(t, "/", root[0].Items[0].Href)
	require.Equal(t, "/products", root[1].Items[1].Href)
}

func TestVisibleFiltersByRole(t *testing.T) {
	t.Parallel()

	menu := BuildMenu("/admin")

	admin := Visible(menu, []string{string(rbac.RoleAdmin)}, "/admin")
	require.Equal(t, []string{"dashboard", "cabys", "products", "issuer", "provider", "purchases", "account"}, keys(admin))

	viewer := Visible(menu, []string{string(rbac.RoleViewer)}, "/admin")
	require.Equal(t, []string{"dashboard", "cabys", "products", "account"}, keys(viewer))
	for _, g := range viewer {
		require.NotEqual(t, "documents", g.Key, "groups without items are dropped")
	}

	require.Empty(t, Visible(menu, nil, "/admin"))
}

func TestVisibleMarksActiveItem(t *testing.T) {
	t.Parallel()

	groups := Visible(BuildMenu("/admin"), []string{"admin"}, "/admin/products/42/edit")
	var active []string
	for _, g := range groups {
		for _, item := range g.Items {
			if item.Active {
				active = append(active, item.Key)
			}
		}
	}
	require.Equal(t, []string{"products"}, active)
}

func TestMatches(t *testing.T) {
	t.Parallel()

	require.True(t, Matches("/admin/", "/admin", false))
	require.False(t, Matches("/admin/catalog", "/admin", false))
	require.True(t, Matches("/admin/catalog/table", "/admin/catalog", true))
	require.False(t, Matches("/admin/catalogue", "/admin/catalog", true))
	require.True(t, Matches("//admin//catalog", "/admin/catalog", false))
}
