package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasCapabilityMatrix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		roles      []string
		capability Capability
		want       bool
	}{
		{"admin has defined capability", []string{"admin"}, CapReferenceReload, true},
		{"admin denied for undefined capability", []string{"admin"}, Capability("made.up"), false},
		{"user manages products", []string{"user"}, CapProductsManage, true},
		{"user cannot force reference reload", []string{"user"}, CapReferenceReload, false},
		{"viewer browses catalog", []string{"viewer"}, CapCatalogBrowse, true},
		{"viewer cannot create purchases", []string{"viewer"}, CapPurchasesCreate, false},
		{"roles are case insensitive", []string{" USER "}, CapPartiesManage, true},
		{"unknown role grants nothing", []string{"unknown"}, CapDashboardView, false},
		{"empty capability defaults to visible", []string{"viewer"}, Capability(""), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, HasCapability(tc.roles, tc.capability), "HasCapability(%v, %q)", tc.roles, tc.capability)
		})
	}
}

func TestCapabilitiesForRoles(t *testing.T) {
	t.Parallel()

	caps := CapabilitiesForRoles([]string{"viewer"})
	require.True(t, caps[CapProductsView])
	require.False(t, caps[CapProductsManage])

	admin := CapabilitiesForRoles([]string{"admin"})
	require.Len(t, admin, len(capabilityRoles))
}

func TestHasAnyRole(t *testing.T) {
	t.Parallel()

	require.True(t, HasAnyRole([]string{"user"}, Roles{RoleUser}))
	require.False(t, HasAnyRole([]string{"viewer"}, Roles{RoleUser}))
	require.True(t, HasAnyRole([]string{"unknown", "admin"}, Roles{RoleViewer}))
	require.Equal(t, Roles{RoleUser}, NormaliseRoles([]string{"User", "user", ""}))
}
