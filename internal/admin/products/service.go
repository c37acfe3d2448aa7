// Package products maintains the product catalogue of the signed-in company.
package products

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
)

var (
	// ErrNotConfigured indicates that the products service dependency has not been wired.
	ErrNotConfigured = errors.New("products service not configured")
	// ErrNotFound is returned when the product does not exist or belongs to another company.
	ErrNotFound = errors.New("products: not found")
)

// Service exposes product maintenance for the caller's company.
type Service interface {
	// List returns the products of companyID.
	List(ctx context.Context, token, companyID string) ([]Product, error)
	// Get returns a single product of companyID.
	Get(ctx context.Context, token, companyID, id string) (*Product, error)
	// Create stores a new product.
	Create(ctx context.Context, token string, product Product) (*Product, error)
	// Update replaces the product identified by id.
	Update(ctx context.Context, token, id string, product Product) (*Product, error)
	// Delete removes the product identified by id.
	Delete(ctx context.Context, token, id string) error
}

// Product mirrors the backend record.
type Product struct {
	ID                 backend.ID      `json:"id,omitempty"`
	CompanyID          backend.ID      `json:"empresa_id"`
	Code               string          `json:"codigo_producto"`
	CabysCode          string          `json:"codigo_cabys"`
	Name               string          `json:"nombre"`
	Description        string          `json:"descripcion"`
	PurchasePrice      decimal.Decimal `json:"precio_compra"`
	ConsumerPrice      decimal.Decimal `json:"precio_consumidor"`
	Stock              int             `json:"stock"`
	Unit               string          `json:"unidad_medida"`
	WeightPerUnit      decimal.Decimal `json:"peso_por_unidad"`
	DiscountPercentage decimal.Decimal `json:"porcentaje_descuento"`
	VATPercentage      decimal.Decimal `json:"porcentaje_iva"`
	Category           string          `json:"categoria"`
}

// PriceWithVAT returns the consumer price after discount plus VAT, rounded to cents.
func (p Product) PriceWithVAT() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	price := p.ConsumerPrice
	if p.DiscountPercentage.IsPositive() {
		price = price.Sub(price.Mul(p.DiscountPercentage).Div(hundred))
	}
	if p.VATPercentage.IsPositive() {
		price = price.Add(price.Mul(p.VATPercentage).Div(hundred))
	}
	return price.Round(2)
}

// Search keeps the products whose name or product code contains term, ignoring case.
func Search(products []Product, term string) []Product {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))
	if needle == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold.String(p.Name), needle) || strings.Contains(fold.String(p.Code), needle) {
			out = append(out, p)
		}
	}
	return out
}

// ForCompany keeps the products belonging to companyID.
func ForCompany(products []Product, companyID string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if string(p.CompanyID) == companyID {
			out = append(out, p)
		}
	}
	return out
}
