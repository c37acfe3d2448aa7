// Package issuer models the issuer (emisor) and provider (proveedor) of an
// electronic document.
package issuer

import (
	"net/url"
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/selector"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

// Kind distinguishes the two parties sharing the form.
type Kind string

const (
	KindIssuer   Kind = "issuer"
	KindProvider Kind = "provider"
)

// Title returns the Spanish heading for the party.
func (k Kind) Title() string {
	if k == KindProvider {
		return "Proveedor"
	}
	return "Emisor"
}

// IDType is the Hacienda identification type code.
type IDType string

const (
	IDPhysical  IDType = "01"
	IDJuridical IDType = "02"
	IDDIMEX     IDType = "03"
	IDNITE      IDType = "04"
)

// Label returns the display name.
func (t IDType) Label() string {
	switch t {
	case IDPhysical:
		return "Cédula Física"
	case IDJuridical:
		return "Cédula Jurídica"
	case IDDIMEX:
		return "DIMEX"
	case IDNITE:
		return "NITE"
	default:
		return string(t)
	}
}

// IDTypes lists the identification types in form order.
func IDTypes() []IDType {
	return []IDType{IDPhysical, IDJuridical, IDDIMEX, IDNITE}
}

// Party is the submitted issuer or provider.
type Party struct {
	Identification string             `form:"identificacion" json:"identificacion" validate:"required,max=20"`
	IDType         IDType             `form:"tipoIdentificacion" json:"tipoIdentificacion" validate:"required,oneof=01 02 03 04"`
	Phone          string             `form:"telefono" json:"telefono" validate:"required,max=20"`
	Name           string             `form:"nombre" json:"nombre" validate:"required,max=100"`
	Email          string             `form:"correoElectronico" json:"correoElectronico" validate:"required,email"`
	Address        string             `form:"direccionExacta" json:"direccionExacta" validate:"required,max=250"`
	Barrio         string             `form:"barrio" json:"barrio"`
	Location       selector.Selection `form:"-" json:"ubicacion"`
}

// ParseParty reads the form fields. The location is taken as submitted and
// must be replayed through a selector by the caller.
func ParseParty(values url.Values) Party {
	idType := IDType(strings.TrimSpace(values.Get("tipoIdentificacion")))
	if idType == "" {
		idType = IDPhysical
	}
	return Party{
		Identification: strings.TrimSpace(values.Get("identificacion")),
		IDType:         idType,
		Phone:          strings.TrimSpace(values.Get("telefono")),
		Name:           strings.TrimSpace(values.Get("nombre")),
		Email:          strings.TrimSpace(values.Get("correoElectronico")),
		Address:        strings.TrimSpace(values.Get("direccionExacta")),
		Barrio:         strings.TrimSpace(values.Get("barrio")),
		Location: selector.Selection{
			Province: values.Get("provincia"),
			Canton:   values.Get("canton"),
			District: values.Get("distrito"),
		}.Normalize(),
	}
}

// Validate returns the field errors of p, or nil.
func Validate(p Party) validation.FieldErrors {
	return validation.Struct(p)
}

// Empty reports whether nothing was captured yet.
func (p Party) Empty() bool {
	return p.Identification == "" && p.Name == "" && p.Email == ""
}
