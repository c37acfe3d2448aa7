// Package purchases captures the header of a purchase document and the
// parties attached to it while the draft is being prepared.
package purchases

import (
	"net/url"
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/issuer"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

// Option is a value/label pair for a select input.
type Option struct {
	Value string
	Label string
}

var (
	// SaleConditions lists the accepted sale conditions.
	SaleConditions = []Option{{"contado", "Contado"}, {"credito", "Crédito"}}
	// Currencies lists the accepted currencies.
	Currencies = []Option{{"colones", "₡ Colones"}, {"dolares", "$ Dólares"}}
	// PurchaseTypes lists the accepted purchase types.
	PurchaseTypes = []Option{{"deducible", "Compra Deducible"}, {"no_deducible", "Compra No Deducible"}}
)

// Header is the InicioCompras form.
type Header struct {
	SaleCondition string `form:"condicionVenta" json:"condicionVenta" validate:"required,oneof=contado credito"`
	Currency      string `form:"moneda" json:"moneda" validate:"required,oneof=colones dolares"`
	Term          string `form:"plazo" json:"plazo" validate:"required,max=30"`
	ExchangeRate  string `form:"tipoCambio" json:"tipoCambio" validate:"required,numeric"`
	Notes         string `form:"observacion" json:"observacion" validate:"required,max=500"`
	PurchaseType  string `form:"tipoCompra" json:"tipoCompra" validate:"required,oneof=deducible no_deducible"`
}

// DefaultHeader returns the initial form values.
func DefaultHeader() Header {
	return Header{SaleCondition: "contado", Currency: "colones", PurchaseType: "deducible"}
}

// ParseHeader reads the form fields.
func ParseHeader(values url.Values) Header {
	return Header{
		SaleCondition: strings.TrimSpace(values.Get("condicionVenta")),
		Currency:      strings.TrimSpace(values.Get("moneda")),
		Term:          strings.TrimSpace(values.Get("plazo")),
		ExchangeRate:  strings.ReplaceAll(strings.TrimSpace(values.Get("tipoCambio")), ",", "."),
		Notes:         strings.TrimSpace(values.Get("observacion")),
		PurchaseType:  strings.TrimSpace(values.Get("tipoCompra")),
	}
}

// Validate returns the field errors of h, or nil.
func (h Header) Validate() validation.FieldErrors {
	return validation.Struct(h)
}

// Draft is the purchase being prepared, kept in the user's session.
type Draft struct {
	Header   Header       `json:"header"`
	Issuer   issuer.Party `json:"issuer"`
	Provider issuer.Party `json:"provider"`
	HeaderOK bool         `json:"headerOk"`
}

// NewDraft returns a draft with the default header.
func NewDraft() Draft {
	return Draft{Header: DefaultHeader()}
}

// Party returns the party of the given kind.
func (d Draft) Party(kind issuer.Kind) issuer.Party {
	if kind == issuer.KindProvider {
		return d.Provider
	}
	return d.Issuer
}

// SetParty stores the party of the given kind.
func (d *Draft) SetParty(kind issuer.Kind, p issuer.Party) {
	if kind == issuer.KindProvider {
		d.Provider = p
		return
	}
	d.Issuer = p
}

// Ready reports whether every section of the draft has been captured.
func (d Draft) Ready() bool {
	return d.HeaderOK && !d.Issuer.Empty() && !d.Provider.Empty()
}
