// Package navigation defines the admin sidebar menu.
package navigation

import (
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/rbac"
)

// MenuItem is a single sidebar link.
type MenuItem struct {
	Key         string
	Label       string
	Capability  rbac.Capability
	Href        string
	Pattern     string
	MatchPrefix bool
	Active      bool
}

// MenuGroup is a titled block of links. A group capability hides every item
// when the user lacks it.
type MenuGroup struct {
	Key        string
	Label      string
	Capability rbac.Capability
	Items      []MenuItem
}

// BuildMenu returns the full menu rooted at basePath.
func BuildMenu(basePath string) []MenuGroup {
	link := func(suffix string) string { return Join(basePath, suffix) }
	return []MenuGroup{
		{
			Key:   "general",
			Label: "General",
			Items: []MenuItem{
				{Key: "dashboard", Label: "Inicio", Capability: rbac.CapDashboardView, Href: link("/"), Pattern: link("/")},
			},
		},
		{
			Key:   "catalog",
			Label: "Catálogos",
			Items: []MenuItem{
				{Key: "cabys", Label: "Catálogo CABYS", Capability: rbac.CapCatalogBrowse, Href: link("/catalog"), Pattern: link("/catalog"), MatchPrefix: true},
				{Key: "products", Label: "Productos", Capability: rbac.CapProductsView, Href: link("/products"), Pattern: link("/products"), MatchPrefix: true},
			},
		},
		{
			Key:        "documents",
			Label:      "Documentos",
			Capability: rbac.CapPartiesManage,
			Items: []MenuItem{
				{Key: "issuer", Label: "Emisor", Capability: rbac.CapPartiesManage, Href: link("/issuer"), Pattern: link("/issuer")},
				{Key: "provider", Label: "Proveedor", Capability: rbac.CapPartiesManage, Href: link("/provider"), Pattern: link("/provider")},
				{Key: "purchases", Label: "Nueva compra", Capability: rbac.CapPurchasesCreate, Href: link("/purchases/new"), Pattern: link("/purchases"), MatchPrefix: true},
			},
		},
		{
			Key:   "account",
			Label: "Cuenta",
			Items: []MenuItem{
				{Key: "account", Label: "Mi cuenta", Capability: rbac.CapAccountSelf, Href: link("/account"), Pattern: link("/account"), MatchPrefix: true},
			},
		},
	}
}

// VisibleItems returns the items of g the roles may open.
func (g MenuGroup) VisibleItems(roles []string) []MenuItem {
	if g.Capability != "" && !rbac.HasCapability(roles, g.Capability) {
		return nil
	}
	var out []MenuItem
	for _, item := range g.Items {
		if item.Capability == "" || rbac.HasCapability(roles, item.Capability) {
			out = append(out, item)
		}
	}
	return out
}

// Visible filters menu down to the groups and items the roles may open and
// flags the item matching currentPath as active. Empty groups are dropped.
func Visible(menu []MenuGroup, roles []string, currentPath string) []MenuGroup {
	var out []MenuGroup
	for _, group := range menu {
		items := group.VisibleItems(roles)
		if len(items) == 0 {
			continue
		}
		for i := range items {
			items[i].Active = Matches(currentPath, items[i].Pattern, items[i].MatchPrefix)
		}
		group.Items = items
		out = append(out, group)
	}
	return out
}

// Matches reports whether current selects pattern. Prefix patterns also match
// nested paths.
func Matches(current, pattern string, prefix bool) bool {
	current = Normalize(current)
	target := Normalize(pattern)
	if prefix && target != "/" {
		return current == target || strings.HasPrefix(current, target+"/")
	}
	return current == target
}

// Join appends suffix to basePath.
func Join(basePath, suffix string) string {
	base := strings.TrimRight(strings.TrimSpace(basePath), "/")
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	if base == "" {
		return suffix
	}
	if suffix == "/" {
		return base
	}
	return base + suffix
}

// Normalize collapses duplicate slashes and drops a trailing slash.
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
