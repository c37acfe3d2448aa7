package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
)

// HTTPService implements Service backed by the ManagerSync user endpoints.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs a Service that talks to the backend API.
func NewHTTPService(baseURL string, client backend.HTTPClient) (*HTTPService, error) {
	c, err := backend.NewClient("account", baseURL, client)
	if err != nil {
		return nil, err
	}
	return &HTTPService{client: c}, nil
}

// Login posts the credentials to /api/login. 401 and 422 responses map to ErrInvalidCredentials.
func (s *HTTPService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var payload struct {
		Token       string   `json:"token"`
		AccessToken string   `json:"access_token"`
		User        *Profile `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := s.client.Do(ctx, http.MethodPost, "/api/login", "", body, &payload); err != nil {
		switch backend.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusUnprocessableEntity:
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	token := strings.TrimSpace(payload.Token)
	if token == "" {
		token = strings.TrimSpace(payload.AccessToken)
	}
	if token == "" {
		return nil, errors.New("account: login response without token")
	}
	result := &LoginResult{Token: token}
	if payload.User != nil {
		result.Profile = *payload.User
	} else {
		profile, err := s.Profile(ctx, token)
		if err != nil {
			return nil, err
		}
		result.Profile = *profile
	}
	return result, nil
}

// Profile retrieves /api/user. The backend answers either the bare user or {"user": ...}.
func (s *HTTPService) Profile(ctx context.Context, token string) (*Profile, error) {
	var payload struct {
		Profile
		User *Profile `json:"user"`
	}
	if err := s.client.Get(ctx, "/api/user", token, &payload); err != nil {
		return nil, err
	}
	if payload.User != nil {
		return payload.User, nil
	}
	p := payload.Profile
	return &p, nil
}

// UpdateProfile posts the settings form.
func (s *HTTPService) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*Profile, error) {
	var payload struct {
		Profile
		User *Profile `json:"user"`
	}
	if err := s.client.Do(ctx, http.MethodPut, "/api/update-profile", token, update, &payload); err != nil {
		return nil, err
	}
	if payload.User != nil {
		return payload.User, nil
	}
	if payload.Email == "" {
		return &Profile{Name: update.Name, Email: update.Email, Cedula: update.Cedula}, nil
	}
	p := payload.Profile
	return &p, nil
}

// DeleteAccount deletes the caller's account.
func (s *HTTPService) DeleteAccount(ctx context.Context, token string) error {
	return s.client.Do(ctx, http.MethodDelete, "/api/delete-account", token, nil, nil)
}

// Register creates a user.
func (s *HTTPService) Register(ctx context.Context, reg Registration) error {
	return s.client.Do(ctx, http.MethodPost, "/api/register", "", reg, nil)
}

// Companies lists /api/empresas.
func (s *HTTPService) Companies(ctx context.Context) ([]Company, error) {
	var companies []Company
	if err := s.client.Get(ctx, "/api/empresas", "", &companies); err != nil {
		return nil, err
	}
	return companies, nil
}
