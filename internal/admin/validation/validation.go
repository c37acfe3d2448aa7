// Package validation runs struct-tag validation on form payloads and reports
// failures keyed by form field name with Spanish messages.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// Empty reports whether there are no errors.
func (f FieldErrors) Empty() bool { return len(f) == 0 }

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// Get returns the message for field.
func (f FieldErrors) Get(field string) string { return f[field] }

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return "validation: " + strings.Join(parts, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		validate = v
	})
	return validate
}

// Struct validates s and returns the failures, or nil.
func Struct(s any) FieldErrors {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	out := FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = "Datos inválidos"
		return out
	}
	for _, e := range verrs {
		out.Add(e.Field(), Message(e))
	}
	return out
}

// Message renders a single failure in Spanish.
func Message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "Campo obligatorio"
	case "email":
		return "Correo electrónico inválido"
	case "eqfield":
		return "Los valores no coinciden"
	case "min":
		if e.Kind() == reflect.String {
			return "Debe tener al menos " + e.Param() + " caracteres"
		}
		return "Debe ser al menos " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Debe tener como máximo " + e.Param() + " caracteres"
		}
		return "Debe ser como máximo " + e.Param()
	case "gte":
		return "Debe ser mayor o igual a " + e.Param()
	case "lte":
		return "Debe ser menor o igual a " + e.Param()
	case "gt":
		return "Debe ser mayor a " + e.Param()
	case "oneof":
		return "Opción inválida"
	case "numeric", "number":
		return "Debe ser numérico"
	case "len":
		return "Debe tener exactamente " + e.Param() + " caracteres"
	default:
		return "Valor inválido"
	}
}
