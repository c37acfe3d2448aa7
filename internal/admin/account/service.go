// Package account manages the signed-in user's profile and registration.
package account

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

var (
	// ErrNotConfigured indicates that the account service dependency has not been wired.
	ErrNotConfigured = errors.New("account service not configured")
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("account: invalid credentials")
)

// Service exposes account operations against the backend.
type Service interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Profile returns the caller's profile.
	Profile(ctx context.Context, token string) (*Profile, error)
	// UpdateProfile saves the editable profile fields.
	UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*Profile, error)
	// DeleteAccount removes the caller's account.
	DeleteAccount(ctx context.Context, token string) error
	// Register creates a new user.
	Register(ctx context.Context, reg Registration) error
	// Companies lists the companies a user may register against.
	Companies(ctx context.Context) ([]Company, error)
}

// Profile is the backend user record.
type Profile struct {
	ID           backend.ID `json:"id"`
	Name         string     `json:"nombre"`
	Email        string     `json:"email"`
	Cedula       string     `json:"cedula"`
	Role         string     `json:"role"`
	CompanyID    backend.ID `json:"empresa_id"`
	ProfileImage string     `json:"profile_image,omitempty"`
}

// LoginResult carries the issued token and the signed-in profile.
type LoginResult struct {
	Token   string
	Profile Profile
}

// Company is a registered company.
type Company struct {
	ID     backend.ID `json:"id"`
	Name   string     `json:"nombre"`
	Cedula string     `json:"cedula_juridica,omitempty"`
}

// ProfileUpdate is the settings form.
type ProfileUpdate struct {
	Name   string `form:"nombre" json:"nombre" validate:"required,max=100"`
	Email  string `form:"email" json:"email" validate:"required,email"`
	Cedula string `form:"cedula" json:"cedula" validate:"required,max=20"`
}

// ParseProfileUpdate reads the settings form.
func ParseProfileUpdate(values url.Values) ProfileUpdate {
	return ProfileUpdate{
		Name:   strings.TrimSpace(values.Get("nombre")),
		Email:  strings.TrimSpace(values.Get("email")),
		Cedula: strings.TrimSpace(values.Get("cedula")),
	}
}

// Validate returns the field errors, or nil.
func (u ProfileUpdate) Validate() validation.FieldErrors {
	return validation.Struct(u)
}

// Registration is the sign-up form.
type Registration struct {
	Name                 string `form:"nombre" json:"nombre" validate:"required,max=100"`
	Email                string `form:"email" json:"email" validate:"required,email"`
	Cedula               string `form:"cedula" json:"cedula" validate:"required,max=20"`
	Role                 string `form:"role" json:"role" validate:"required,oneof=admin user"`
	Password             string `form:"password" json:"password" validate:"required,min=8"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation" validate:"required,eqfield=Password"`
	CompanyID            string `form:"empresa_id" json:"empresa_id" validate:"required"`
}

// ParseRegistration reads the sign-up form. The role defaults to admin.
func ParseRegistration(values url.Values) Registration {
	role := strings.TrimSpace(values.Get("role"))
	if role == "" {
		role = "admin"
	}
	return Registration{
		Name:                 strings.TrimSpace(values.Get("nombre")),
		Email:                strings.TrimSpace(values.Get("email")),
		Cedula:               strings.TrimSpace(values.Get("cedula")),
		Role:                 role,
		Password:             values.Get("password"),
		PasswordConfirmation: values.Get("password_confirmation"),
		CompanyID:            strings.TrimSpace(values.Get("empresa_id")),
	}
}

// BackendFieldErrors lifts per-field messages out of a backend error.
func BackendFieldErrors(err error) validation.FieldErrors {
	var be *backend.Error
	if !errors.As(err, &be) || len(be.Fields) == 0 {
		return nil
	}
	out := validation.FieldErrors{}
	for field, msg := range be.Fields {
		out.Add(field, msg)
	}
	return out
}

// Validate returns the field errors, or nil. A mismatched confirmation gets
// its own message.
func (r Registration) Validate() validation.FieldErrors {
	errs := validation.Struct(r)
	if r.Password != r.PasswordConfirmation && r.PasswordConfirmation != "" {
		if errs == nil {
			errs = validation.FieldErrors{}
		}
		errs["password_confirmation"] = "Las contraseñas no coinciden"
	}
	return errs
}
