// Package parties renders the issuer and provider forms with the cascading
// address selects.
package parties

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/issuer"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/selector"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/layout"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("parties", files)

// AddressData is the cascading province/canton/district fragment.
type AddressData struct {
	Provinces []helpers.Option
	Cantons   []helpers.Option
	Districts []helpers.Option
	Barrio    string
	Path      string
	Loading   bool
	Error     string
	Errors    validation.FieldErrors
}

// NewAddress renders the options of sel. state drives the loading and error notices.
func NewAddress(path string, sel *selector.Selector, state geo.State, barrio string) AddressData {
	current := sel.Selection()
	opts := sel.Options()
	data := AddressData{
		Provinces: options(opts.Provinces, current.Province),
		Cantons:   options(opts.Cantons, current.Canton),
		Districts: options(opts.Districts, current.District),
		Barrio:    barrio,
		Path:      path,
	}
	switch state {
	case geo.StateLoading, geo.StateIdle:
		data.Loading = len(opts.Provinces) <= 1
	case geo.StateFailed:
		if len(opts.Provinces) <= 1 {
			data.Error = "No se pudieron cargar las ubicaciones. Puede recargarlas desde Inicio."
		}
	}
	return data
}

func options(values []string, selected string) []helpers.Option {
	out := make([]helpers.Option, 0, len(values))
	for _, v := range values {
		out = append(out, helpers.Option{Value: v, Label: v, Selected: v == selected})
	}
	return out
}

// FormData is the issuer/provider form.
type FormData struct {
	Kind      issuer.Kind
	Title     string
	Values    map[string]string
	IDTypes   []helpers.Option
	Errors    validation.FieldErrors
	Address   AddressData
	Action    string
	Saved     bool
	NextPath  string
	CSRFToken string
}

// NewForm prepares the form for party.
func NewForm(kind issuer.Kind, action string, party issuer.Party, address AddressData, errs validation.FieldErrors) FormData {
	data := FormData{
		Kind:    kind,
		Title:   kind.Title(),
		Action:  action,
		Errors:  errs,
		Address: address,
		Values: map[string]string{
			"identificacion":    party.Identification,
			"telefono":          party.Phone,
			"nombre":            party.Name,
			"correoElectronico": party.Email,
			"direccionExacta":   party.Address,
		},
	}
	data.Address.Errors = errs
	for _, t := range issuer.IDTypes() {
		data.IDTypes = append(data.IDTypes, helpers.Option{Value: string(t), Label: t.Label(), Selected: t == party.IDType})
	}
	return data
}

// FormPage renders the form inside the shell.
func FormPage(data FormData) templ.Component {
	return layout.Page(data.Title, views.Component("form-page", data))
}

// Form renders the form alone, for htmx re-renders.
func Form(data FormData) templ.Component {
	return views.Component("form", data)
}

// Address renders the cascading selects alone.
func Address(data AddressData) templ.Component {
	return views.Component("address", data)
}
