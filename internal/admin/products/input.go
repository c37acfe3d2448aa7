package products

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/cabys"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

// Input is the product maintenance form.
type Input struct {
	Code               string          `form:"codigo_producto" validate:"required,max=20"`
	CabysCode          string          `form:"codigo_cabys" validate:"required,len=13,numeric"`
	Name               string          `form:"nombre" validate:"required,max=200"`
	Description        string          `form:"descripcion" validate:"required"`
	PurchasePrice      decimal.Decimal `form:"precio_compra" validate:"gte=0"`
	ConsumerPrice      decimal.Decimal `form:"precio_consumidor" validate:"gte=0"`
	Stock              int             `form:"stock" validate:"gte=0"`
	Unit               string          `form:"unidad_medida" validate:"required"`
	WeightPerUnit      decimal.Decimal `form:"peso_por_unidad" validate:"gte=0"`
	DiscountPercentage decimal.Decimal `form:"porcentaje_descuento" validate:"gte=0,lte=100"`
	VATPercentage      decimal.Decimal `form:"porcentaje_iva" validate:"gte=0,lte=100"`
	Category           string          `form:"categoria"`
}

// ParseInput reads the form values. Numeric fields that fail to parse are
// reported alongside the regular validation errors by Validate.
func ParseInput(values url.Values) (Input, validation.FieldErrors) {
	errs := validation.FieldErrors{}
	in := Input{
		Code:        strings.TrimSpace(values.Get("codigo_producto")),
		CabysCode:   strings.TrimSpace(values.Get("codigo_cabys")),
		Name:        strings.TrimSpace(values.Get("nombre")),
		Description: strings.TrimSpace(values.Get("descripcion")),
		Unit:        strings.TrimSpace(values.Get("unidad_medida")),
		Category:    strings.TrimSpace(values.Get("categoria")),
	}
	in.PurchasePrice = parseDecimal(values, "precio_compra", true, errs)
	in.ConsumerPrice = parseDecimal(values, "precio_consumidor", true, errs)
	in.WeightPerUnit = parseDecimal(values, "peso_por_unidad", false, errs)
	in.DiscountPercentage = parseDecimal(values, "porcentaje_descuento", false, errs)
	in.VATPercentage = parseDecimal(values, "porcentaje_iva", false, errs)

	if raw := strings.TrimSpace(values.Get("stock")); raw == "" {
		errs.Add("stock", "Campo obligatorio")
	} else if n, err := strconv.Atoi(raw); err != nil {
		errs.Add("stock", "Debe ser un número entero")
	} else {
		in.Stock = n
	}
	return in, errs
}

func parseDecimal(values url.Values, field string, required bool, errs validation.FieldErrors) decimal.Decimal {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		if required {
			errs.Add(field, "Campo obligatorio")
		}
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		errs.Add(field, "Debe ser numérico")
		return decimal.Zero
	}
	return d
}

// Validate merges parse errors with struct validation errors.
func (in Input) Validate(parseErrs validation.FieldErrors) validation.FieldErrors {
	errs := validation.FieldErrors{}
	for field, msg := range parseErrs {
		errs.Add(field, msg)
	}
	for field, msg := range validation.Struct(in) {
		errs.Add(field, msg)
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

// Apply fills the CABYS derived fields from a selected entry. The name is
// only filled when still empty.
func (in *Input) Apply(entry cabys.Entry) {
	in.CabysCode = strings.TrimSpace(entry.Code)
	in.Description = strings.TrimSpace(entry.Description)
	in.Category = entry.CategoryLabel()
	in.VATPercentage = entry.Tax
	if in.Name == "" {
		in.Name = in.Description
	}
}

// Product converts the input into a backend record for companyID.
func (in Input) Product(companyID string) Product {
	return Product{
		CompanyID:          backend.ID(companyID),
		Code:               in.Code,
		CabysCode:          in.CabysCode,
		Name:               in.Name,
		Description:        in.Description,
		PurchasePrice:      in.PurchasePrice,
		ConsumerPrice:      in.ConsumerPrice,
		Stock:              in.Stock,
		Unit:               in.Unit,
		WeightPerUnit:      in.WeightPerUnit,
		DiscountPercentage: in.DiscountPercentage,
		VATPercentage:      in.VATPercentage,
		Category:           in.Category,
	}
}

// InputFromProduct prepares the edit form.
func InputFromProduct(p Product) Input {
	return Input{
		Code:               p.Code,
		CabysCode:          p.CabysCode,
		Name:               p.Name,
		Description:        p.Description,
		PurchasePrice:      p.PurchasePrice,
		ConsumerPrice:      p.ConsumerPrice,
		Stock:              p.Stock,
		Unit:               p.Unit,
		WeightPerUnit:      p.WeightPerUnit,
		DiscountPercentage: p.DiscountPercentage,
		VATPercentage:      p.VATPercentage,
		Category:           p.Category,
	}
}
