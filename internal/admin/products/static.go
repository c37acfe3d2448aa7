package products

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
)

// StaticService keeps products in memory. It is used in development and tests.
type StaticService struct {
	mu       sync.RWMutex
	products map[string]Product
	order    []string
}

// NewStaticService seeds the store with sample products for company "1".
func NewStaticService() *StaticService {
	s := &StaticService{products: make(map[string]Product)}
	for _, p := range sampleProducts() {
		s.put(p)
	}
	return s
}

// NewEmptyStaticService returns a store without products.
func NewEmptyStaticService() *StaticService {
	return &StaticService{products: make(map[string]Product)}
}

func (s *StaticService) put(p Product) Product {
	if p.ID == "" {
		p.ID = backend.ID(uuid.NewString())
	}
	if _, exists := s.products[string(p.ID)]; !exists {
		s.order = append(s.order, string(p.ID))
	}
	s.products[string(p.ID)] = p
	return p
}

// List returns the company's products in insertion order.
func (s *StaticService) List(_ context.Context, _ string, companyID string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		if p := s.products[id]; string(p.CompanyID) == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns one product.
func (s *StaticService) Get(_ context.Context, _ string, companyID, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok || (companyID != "" && string(p.CompanyID) != companyID) {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Create stores a new product with a generated identifier.
func (s *StaticService) Create(_ context.Context, _ string, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.ID = ""
	created := s.put(product)
	return &created, nil
}

// Update replaces a product.
func (s *StaticService) Update(_ context.Context, _ string, id string, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return nil, ErrNotFound
	}
	product.ID = backend.ID(id)
	s.products[id] = product
	return &product, nil
}

// Delete removes a product.
func (s *StaticService) Delete(_ context.Context, _ string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	filtered := s.order[:0]
	for _, existing := range s.order {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	s.order = filtered
	return nil
}

func sampleProducts() []Product {
	d := decimal.RequireFromString
	return []Product{
		{
			ID: "prod-cafe", CompanyID: "1", Code: "CAF-001", CabysCode: "2392200000100",
			Name: "Café tostado 500 g", Description: "Café tostado en grano",
			PurchasePrice: d("2500"), ConsumerPrice: d("3900"), Stock: 40, Unit: "Unid",
			WeightPerUnit: d("0.5"), VATPercentage: d("1"), Category: "Productos alimenticios, Café",
		},
		{
			ID: "prod-agua", CompanyID: "1", Code: "AGU-010", CabysCode: "2441000000100",
			Name: "Agua mineral 600 ml", Description: "Agua mineral natural embotellada",
			PurchasePrice: d("350"), ConsumerPrice: d("700"), Stock: 120, Unit: "Unid",
			WeightPerUnit: d("0.6"), DiscountPercentage: d("5"), VATPercentage: d("13"), Category: "Productos alimenticios, Bebidas",
		},
		{
			ID: "prod-consultoria", CompanyID: "1", Code: "SRV-100", CabysCode: "8314100000100",
			Name: "Consultoría TI por hora", Description: "Servicios de consultoría en tecnología de la información",
			PurchasePrice: d("0"), ConsumerPrice: d("25000"), Stock: 0, Unit: "h",
			VATPercentage: d("13"), Category: "Servicios profesionales, Servicios informáticos",
		},
		{
			ID: "prod-otra-empresa", CompanyID: "2", Code: "PAP-001", CabysCode: "3211200000100",
			Name: "Papel bond carta", Description: "Papel bond para impresión",
			PurchasePrice: d("2100"), ConsumerPrice: d("3200"), Stock: 15, Unit: "Paq",
			VATPercentage: d("13"), Category: "Productos de papel",
		},
	}
}
