package cabys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/catalog"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// DefaultSeedTerms feed Preload, since Hacienda rejects empty queries.
var DefaultSeedTerms = []string{"servicio", "alimento", "bebida", "software", "papel"}

// HTTPService queries the Hacienda CABYS endpoint.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
	seeds  []string
	limit  int
}

// HTTPOption customises an HTTPService.
type HTTPOption func(*HTTPService)

// WithSeedTerms replaces the preload seed list.
func WithSeedTerms(terms []string) HTTPOption {
	return func(s *HTTPService) {
		var cleaned []string
		for _, t := range terms {
			if t = strings.TrimSpace(t); t != "" {
				cleaned = append(cleaned, t)
			}
		}
		if len(cleaned) > 0 {
			s.seeds = cleaned
		}
	}
}

// WithLimit caps the number of results requested per query.
func WithLimit(limit int) HTTPOption {
	return func(s *HTTPService) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// NewHTTPService constructs a service for baseURL, falling back to DefaultBaseURL.
func NewHTTPService(baseURL string, client HTTPClient, opts ...HTTPOption) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("cabys: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	s := &HTTPService{base: parsed, client: client, seeds: DefaultSeedTerms, limit: 50}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Search looks up by code when term is a 13-digit code and by text otherwise.
func (s *HTTPService) Search(ctx context.Context, term string) ([]Entry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}

	u := *s.base
	query := u.Query()
	if IsCode(term) {
		query.Set("codigo", term)
	} else {
		query.Set("q", term)
		query.Set("top", fmt.Sprint(s.limit))
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("cabys: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cabys: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("cabys: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cabys: lookup failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return decodeEntries(body)
}

// Preload searches every seed term and merges the results by code.
func (s *HTTPService) Preload(ctx context.Context) ([]catalog.Item, error) {
	var all []Entry
	for _, term := range s.seeds {
		entries, err := s.Search(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("cabys: preload %q: %w", term, err)
		}
		all = append(all, entries...)
	}
	return ToItems(all), nil
}

// The text search answers {"cabys":[...]} while the code lookup answers a bare array.
func decodeEntries(body []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return entries, nil
	}

	var payload struct {
		Cabys *[]Entry `json:"cabys"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if payload.Cabys == nil {
		return nil, fmt.Errorf("%w: missing cabys list", ErrMalformed)
	}
	return *payload.Cabys, nil
}
