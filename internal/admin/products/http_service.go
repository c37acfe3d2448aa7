package products

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
)

// HTTPService implements Service against the ManagerSync products API.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService builds a service for baseURL.
func NewHTTPService(baseURL string, client backend.HTTPClient) (*HTTPService, error) {
	c, err := backend.NewClient("products", baseURL, client)
	if err != nil {
		return nil, err
	}
	return &HTTPService{client: c}, nil
}

// List fetches every product and keeps the ones of companyID; the endpoint is not company scoped.
func (s *HTTPService) List(ctx context.Context, token, companyID string) ([]Product, error) {
	var all []Product
	if err := s.client.Get(ctx, "/api/productos/all", token, &all); err != nil {
		return nil, err
	}
	return ForCompany(all, companyID), nil
}

// Get fetches one product and checks its company.
func (s *HTTPService) Get(ctx context.Context, token, companyID, id string) (*Product, error) {
	var p Product
	if err := s.client.Get(ctx, productPath(id), token, &p); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if companyID != "" && string(p.CompanyID) != companyID {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Create posts a new product.
func (s *HTTPService) Create(ctx context.Context, token string, product Product) (*Product, error) {
	product.ID = ""
	var created Product
	if err := s.client.Do(ctx, http.MethodPost, "/api/productos", token, product, &created); err != nil {
		return nil, err
	}
	if created.Code == "" {
		created = product
	}
	return &created, nil
}

// Update replaces a product.
func (s *HTTPService) Update(ctx context.Context, token, id string, product Product) (*Product, error) {
	product.ID = backend.ID(id)
	var updated Product
	if err := s.client.Do(ctx, http.MethodPut, productPath(id), token, product, &updated); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if updated.Code == "" {
		updated = product
	}
	return &updated, nil
}

// Delete removes a product.
func (s *HTTPService) Delete(ctx context.Context, token, id string) error {
	if err := s.client.Do(ctx, http.MethodDelete, productPath(id), token, nil, nil); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func productPath(id string) string {
	return "/api/productos/" + url.PathEscape(strings.TrimSpace(id))
}
