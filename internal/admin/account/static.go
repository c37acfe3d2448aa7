package account

import (
	"context"
	"strings"
	"sync"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
)

// StaticService keeps a single profile in memory for development and tests.
type StaticService struct {
	mu         sync.Mutex
	profile    *Profile
	companies  []Company
	Registered []Registration
	Deleted    bool
}

// NewStaticService constructs a StaticService with helpful defaults.
func NewStaticService(profile *Profile) *StaticService {
	if profile == nil {
		profile = &Profile{
			ID:        "1",
			Name:      "Administración",
			Email:     "admin@managersync.cr",
			Cedula:    "112340567",
			Role:      "admin",
			CompanyID: "1",
		}
	}
	return &StaticService{
		profile: profile,
		companies: []Company{
			{ID: "1", Name: "ManagerSync Demo S.A.", Cedula: "3101000001"},
			{ID: "2", Name: "Distribuidora Central", Cedula: "3101000002"},
		},
	}
}

// StaticToken is the bearer token issued by StaticService logins.
const StaticToken = "static-token"

// Login accepts the stored profile email or a registered user with the
// matching password.
func (s *StaticService) Login(_ context.Context, email, password string) (*LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if password == "" {
		return nil, ErrInvalidCredentials
	}
	if strings.EqualFold(email, s.profile.Email) {
		return &LoginResult{Token: StaticToken, Profile: *s.profile}, nil
	}
	for _, reg := range s.Registered {
		if strings.EqualFold(email, reg.Email) && password == reg.Password {
			return &LoginResult{Token: StaticToken, Profile: Profile{
				ID:        backend.ID(reg.Email),
				Name:      reg.Name,
				Email:     reg.Email,
				Cedula:    reg.Cedula,
				Role:      reg.Role,
				CompanyID: backend.ID(reg.CompanyID),
			}}, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Profile returns a copy of the stored profile.
func (s *StaticService) Profile(context.Context, string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *s.profile
	return &p, nil
}

// UpdateProfile mutates the stored profile.
func (s *StaticService) UpdateProfile(_ context.Context, _ string, update ProfileUpdate) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Name = update.Name
	s.profile.Email = update.Email
	s.profile.Cedula = update.Cedula
	p := *s.profile
	return &p, nil
}

// DeleteAccount records the deletion.
func (s *StaticService) DeleteAccount(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = true
	return nil
}

// Register rejects duplicate emails with a field error like the backend does.
func (s *StaticService) Register(_ context.Context, reg Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Registered {
		if existing.Email == reg.Email {
			return &backend.Error{
				Service: "account",
				Status:  422,
				Message: "El correo ya está registrado",
				Fields:  map[string]string{"email": "El correo ya está registrado"},
			}
		}
	}
	s.Registered = append(s.Registered, reg)
	return nil
}

// Companies returns the configured companies.
func (s *StaticService) Companies(context.Context) ([]Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Company(nil), s.companies...), nil
}
