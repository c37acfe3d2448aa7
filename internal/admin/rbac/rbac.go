// Package rbac maps staff roles to the capabilities checked by handlers and templates.
package rbac

import (
	"slices"
	"strings"
)

// Role represents a staff access tier.
type Role string

const (
	RoleAdmin Role = "admin"
	// RoleUser is the backend's default non-admin role.
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// Capability represents a discrete feature toggle which can be checked in handlers and templates.
type Capability string

const (
	CapDashboardView   Capability = "dashboard.view"
	CapCatalogBrowse   Capability = "catalog.browse"
	CapProductsView    Capability = "products.view"
	CapProductsManage  Capability = "products.manage"
	CapPartiesManage   Capability = "parties.manage"
	CapPurchasesCreate Capability = "purchases.create"
	CapReferenceReload Capability = "reference.reload"
	CapAccountSelf     Capability = "account.self"
)

var capabilityRoles = map[Capability]Roles{
	CapDashboardView:   {RoleAdmin, RoleUser, RoleViewer},
	CapCatalogBrowse:   {RoleAdmin, RoleUser, RoleViewer},
	CapProductsView:    {RoleAdmin, RoleUser, RoleViewer},
	CapProductsManage:  {RoleAdmin, RoleUser},
	CapPartiesManage:   {RoleAdmin, RoleUser},
	CapPurchasesCreate: {RoleAdmin, RoleUser},
	CapReferenceReload: {RoleAdmin},
	CapAccountSelf:     {RoleAdmin, RoleUser, RoleViewer},
}

// Roles is a role list with intersection checks.
type Roles []Role

// Has returns true if the provided role exists in the set.
func (rs Roles) Has(role Role) bool {
	return slices.Contains(rs, role)
}

// Intersects returns true if any role in the candidate slice is also present in the set.
func (rs Roles) Intersects(candidate Roles) bool {
	return slices.ContainsFunc(candidate, rs.Has)
}

// NormaliseRoles lowercases, trims and dedups raw role strings.
func NormaliseRoles(raw []string) Roles {
	if len(raw) == 0 {
		return nil
	}
	roles := make(Roles, 0, len(raw))
	for _, val := range raw {
		role := Role(strings.ToLower(strings.TrimSpace(val)))
		if role == "" || roles.Has(role) {
			continue
		}
		roles = append(roles, role)
	}
	return roles
}

// RolesForCapability returns the configured roles able to access the capability.
func RolesForCapability(capability Capability) Roles {
	return capabilityRoles[capability]
}

// HasAnyRole reports whether the user holds any of the required roles. Admin always does.
func HasAnyRole(userRoles []string, required Roles) bool {
	roles := NormaliseRoles(userRoles)
	if roles.Has(RoleAdmin) {
		return true
	}
	return required.Intersects(roles)
}

// HasCapability reports whether the provided roles grant access to the capability.
// Admin users implicitly possess every defined capability.
func HasCapability(userRoles []string, capability Capability) bool {
	if capability == "" {
		return true
	}
	allowed := RolesForCapability(capability)
	if len(allowed) == 0 {
		return false
	}
	roles := NormaliseRoles(userRoles)
	if roles.Has(RoleAdmin) {
		return true
	}
	return allowed.Intersects(roles)
}

// CapabilitiesForRoles enumerates the capabilities accessible to the provided user roles.
func CapabilitiesForRoles(userRoles []string) map[Capability]bool {
	caps := make(map[Capability]bool, len(capabilityRoles))
	for capability := range capabilityRoles {
		if HasCapability(userRoles, capability) {
			caps[capability] = true
		}
	}
	return caps
}
