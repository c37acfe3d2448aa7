// Package purchases renders the purchase header form.
package purchases

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/issuer"
	adminpurchases "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/purchases"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/layout"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("purchases", files)

// PageData is the purchase header page.
type PageData struct {
	Header         adminpurchases.Header
	SaleConditions []helpers.Option
	Currencies     []helpers.Option
	PurchaseTypes  []helpers.Option
	Errors         validation.FieldErrors
	Issuer         PartySummary
	Provider       PartySummary
	Ready          bool
	Saved          bool
	Action         string
	CSRFToken      string
}

// PartySummary shows whether a party is captured and links to its form.
type PartySummary struct {
	Title    string
	Name     string
	Captured bool
	Href     string
}

// NewPage builds the page for draft with the header values h.
func NewPage(action string, draft adminpurchases.Draft, h adminpurchases.Header, errs validation.FieldErrors, partyHref func(issuer.Kind) string) PageData {
	summary := func(kind issuer.Kind) PartySummary {
		p := draft.Party(kind)
		return PartySummary{Title: kind.Title(), Name: p.Name, Captured: !p.Empty(), Href: partyHref(kind)}
	}
	return PageData{
		Header:         h,
		SaleConditions: options(adminpurchases.SaleConditions, h.SaleCondition),
		Currencies:     options(adminpurchases.Currencies, h.Currency),
		PurchaseTypes:  options(adminpurchases.PurchaseTypes, h.PurchaseType),
		Errors:         errs,
		Issuer:         summary(issuer.KindIssuer),
		Provider:       summary(issuer.KindProvider),
		Ready:          draft.Ready(),
		Action:         action,
	}
}

func options(src []adminpurchases.Option, selected string) []helpers.Option {
	out := make([]helpers.Option, 0, len(src))
	for _, o := range src {
		out = append(out, helpers.Option{Value: o.Value, Label: o.Label, Selected: o.Value == selected})
	}
	return out
}

// Page renders the page inside the shell.
func Page(data PageData) templ.Component {
	return layout.Page("Nueva compra", views.Component("page", data))
}

// Form renders the header form alone, for htmx re-renders.
func Form(data PageData) templ.Component {
	return views.Component("form", data)
}
