// Package auth renders the login and sign-up screens.
package auth

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/layout"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("auth", files)

// LoginPageData encapsulates rendering state for the admin login screen.
type LoginPageData struct {
	Email        string
	Message      string
	Error        string
	Remember     bool
	Next         string
	LoginPath    string
	RegisterPath string
	BasePath     string
	CSRFToken    string
}

// RegisterPageData is the sign-up screen state.
type RegisterPageData struct {
	Form         account.Registration
	Errors       validation.FieldErrors
	Error        string
	Companies    []helpers.Option
	Roles        []helpers.Option
	RegisterPath string
	LoginPath    string
	CSRFToken    string
}

// NewRegisterPageData builds the select options for the submitted form.
func NewRegisterPageData(form account.Registration, companies []account.Company) RegisterPageData {
	data := RegisterPageData{Form: form}
	for _, c := range companies {
		id := c.ID.String()
		data.Companies = append(data.Companies, helpers.Option{Value: id, Label: c.Name, Selected: id == form.CompanyID})
	}
	for _, role := range []helpers.Option{{Value: "admin", Label: "Administrador"}, {Value: "user", Label: "Usuario"}} {
		role.Selected = role.Value == form.Role
		data.Roles = append(data.Roles, role)
	}
	return data
}

// LoginPage renders the login screen.
func LoginPage(data LoginPageData) templ.Component {
	return layout.Bare("Iniciar sesión", views.Component("login", data))
}

// RegisterPage renders the sign-up screen.
func RegisterPage(data RegisterPageData) templ.Component {
	return layout.Bare("Registro", views.Component("register", data))
}

// RegisterForm renders the sign-up form alone, for htmx re-renders.
func RegisterForm(data RegisterPageData) templ.Component {
	return views.Component("register-form", data)
}
