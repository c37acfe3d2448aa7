// Package products renders the product list and maintenance form.
package products

import (
	"embed"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/navigation"
	adminproducts "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/products"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/layout"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("products", files)

// Units lists the measurement units offered by the form.
var Units = []helpers.Option{
	{Value: "Unid", Label: "Unidad"},
	{Value: "Kg", Label: "Kilogramo"},
	{Value: "L", Label: "Litro"},
	{Value: "m", Label: "Metro"},
	{Value: "h", Label: "Hora"},
	{Value: "Sp", Label: "Servicios profesionales"},
}

// ListPageData is the product list page.
type ListPageData struct {
	Table   TableData
	NewPath string
}

// TableData is the product table fragment.
type TableData struct {
	Rows      []Row
	Query     string
	Total     int
	Empty     bool
	Error     string
	TablePath string
	CanManage bool
}

// Row is a rendered product.
type Row struct {
	ID            string
	Code          []helpers.HighlightSegment
	Name          []helpers.HighlightSegment
	CabysCode     string
	Category      string
	ConsumerPrice string
	PriceWithVAT  string
	Stock         int
	EditPath      string
	DeletePath    string
}

// NewTable renders matches of query. listErr shows an error notice instead of rows.
func NewTable(basePath, tablePath, query string, matches []adminproducts.Product, canManage bool, listErr error) TableData {
	data := TableData{Query: query, TablePath: tablePath, CanManage: canManage}
	if listErr != nil {
		data.Error = "No se pudieron cargar los productos. Intente de nuevo más tarde."
		data.Empty = true
		return data
	}
	for _, p := range matches {
		id := p.ID.String()
		data.Rows = append(data.Rows, Row{
			ID:            id,
			Code:          helpers.HighlightSegments(p.Code, query),
			Name:          helpers.HighlightSegments(p.Name, query),
			CabysCode:     p.CabysCode,
			Category:      p.Category,
			ConsumerPrice: helpers.Colones(p.ConsumerPrice),
			PriceWithVAT:  helpers.Colones(p.PriceWithVAT()),
			Stock:         p.Stock,
			EditPath:      navigation.Join(basePath, "/products/"+url.PathEscape(id)+"/edit"),
			DeletePath:    navigation.Join(basePath, "/products/"+url.PathEscape(id)),
		})
	}
	data.Total = len(data.Rows)
	data.Empty = data.Total == 0
	return data
}

// FormData is the create/edit form.
type FormData struct {
	Title           string
	Values          map[string]string
	Units           []helpers.Option
	Errors          validation.FieldErrors
	Error           string
	Action          string
	IsEdit          bool
	CancelPath      string
	CabysSearchPath string
	CSRFToken       string
}

// NewForm prepares the form for values. Unknown units are kept as an extra option.
func NewForm(title, action string, values map[string]string, errs validation.FieldErrors) FormData {
	data := FormData{Title: title, Action: action, Values: values, Errors: errs}
	unit := values["unidad_medida"]
	found := false
	for _, u := range Units {
		u.Selected = u.Value == unit
		found = found || u.Selected
		data.Units = append(data.Units, u)
	}
	if !found && unit != "" {
		data.Units = append(data.Units, helpers.Option{Value: unit, Label: unit, Selected: true})
	}
	return data
}

// ValuesFromInput renders in as form values.
func ValuesFromInput(in adminproducts.Input) map[string]string {
	return map[string]string{
		"codigo_producto":      in.Code,
		"codigo_cabys":         in.CabysCode,
		"nombre":               in.Name,
		"descripcion":          in.Description,
		"precio_compra":        in.PurchasePrice.String(),
		"precio_consumidor":    in.ConsumerPrice.String(),
		"stock":                strconv.Itoa(in.Stock),
		"unidad_medida":        in.Unit,
		"peso_por_unidad":      in.WeightPerUnit.String(),
		"porcentaje_descuento": in.DiscountPercentage.String(),
		"porcentaje_iva":       in.VATPercentage.String(),
		"categoria":            in.Category,
	}
}

// ValuesFromForm keeps the submitted strings so a rejected form re-renders as typed.
func ValuesFromForm(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for key := range form {
		out[key] = form.Get(key)
	}
	return out
}

// Index renders the list page.
func Index(data ListPageData) templ.Component {
	return layout.Page("Productos", views.Component("list", data))
}

// Table renders the table fragment.
func Table(data TableData) templ.Component {
	return views.Component("table", data)
}

// FormPage renders the form inside the shell.
func FormPage(data FormData) templ.Component {
	return layout.Page(data.Title, views.Component("form-page", data))
}

// Form renders the form alone, for htmx re-renders.
func Form(data FormData) templ.Component {
	return views.Component("form", data)
}
