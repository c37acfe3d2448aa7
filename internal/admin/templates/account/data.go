// Package account renders the signed-in user's settings page.
package account

import (
	"embed"
	"strings"

	"github.com/a-h/templ"

	adminaccount "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/layout"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("account", files)

// PageData drives the settings page.
type PageData struct {
	Form       FormData
	Role       string
	Initials   string
	DeletePath string
	CSRFToken  string
}

// FormData is the profile form fragment.
type FormData struct {
	Values    map[string]string
	Errors    validation.FieldErrors
	Error     string
	Saved     bool
	Action    string
	CSRFToken string
}

// NewPage builds the page for profile.
func NewPage(action, deletePath string, profile adminaccount.Profile) PageData {
	return PageData{
		Form:       NewForm(action, ValuesFromProfile(profile), nil),
		Role:       roleLabel(profile.Role),
		Initials:   initials(profile.Name),
		DeletePath: deletePath,
	}
}

// NewForm builds the form fragment.
func NewForm(action string, values map[string]string, errs validation.FieldErrors) FormData {
	return FormData{Values: values, Errors: errs, Action: action}
}

// ValuesFromProfile flattens the editable fields of p.
func ValuesFromProfile(p adminaccount.Profile) map[string]string {
	return map[string]string{"nombre": p.Name, "email": p.Email, "cedula": p.Cedula}
}

// ValuesFromUpdate flattens a submitted update.
func ValuesFromUpdate(u adminaccount.ProfileUpdate) map[string]string {
	return map[string]string{"nombre": u.Name, "email": u.Email, "cedula": u.Cedula}
}

func roleLabel(role string) string {
	switch role {
	case "admin":
		return "Administrador"
	case "user":
		return "Usuario"
	case "":
		return "-"
	}
	return role
}

func initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
		if b.Len() >= 2 {
			break
		}
	}
	return strings.ToUpper(b.String())
}

// Page renders the settings page inside the shell.
func Page(data PageData) templ.Component {
	return layout.Page("Mi cuenta", views.Component("page", data))
}

// Form renders the profile form alone.
func Form(data FormData) templ.Component {
	return views.Component("form", data)
}
