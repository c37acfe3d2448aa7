package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultArcGISURL is the FeatureServer layer publishing Costa Rican districts.
const DefaultArcGISURL = "https://services.arcgis.com/LjCtRQt1uf8M6LGR/arcgis/rest/services/Distritos_CR/FeatureServer/0/query"

var (
	// ErrMalformed indicates the reference service answered with a payload that cannot be indexed.
	ErrMalformed = errors.New("geo: malformed reference response")
	// ErrUnavailable indicates the reference service could not be reached or answered with a non-2xx status.
	ErrUnavailable = errors.New("geo: reference service unavailable")
)

// Source produces the raw geography records.
type Source interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Entry, error)

// Fetch calls f(ctx).
func (f SourceFunc) Fetch(ctx context.Context) ([]Entry, error) {
	return f(ctx)
}

// HTTPClient matches the subset of http.Client used by ArcGISSource.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// ArcGISSource queries the ArcGIS feature service for all district features.
type ArcGISSource struct {
	endpoint *url.URL
	client   HTTPClient
}

// NewArcGISSource constructs a source for the given query endpoint. An empty
// endpoint falls back to DefaultArcGISURL.
func NewArcGISSource(endpoint string, client HTTPClient) (*ArcGISSource, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultArcGISURL
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("geo: parse arcgis url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ArcGISSource{endpoint: parsed, client: client}, nil
}

type arcgisPayload struct {
	Features *[]arcgisFeature `json:"features"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type arcgisFeature struct {
	Attributes struct {
		Province string `json:"NOM_PROV"`
		Canton   string `json:"NOM_CANT"`
		District string `json:"NOM_DIST"`
	} `json:"attributes"`
}

// Fetch issues the query and decodes district attributes.
func (s *ArcGISSource) Fetch(ctx context.Context) ([]Entry, error) {
	u := *s.endpoint
	query := u.Query()
	query.Set("where", "1=1")
	query.Set("outFields", "*")
	query.Set("outSR", "4326")
	query.Set("f", "json")
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("geo: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload arcgisPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("%w: arcgis error %d: %s", ErrMalformed, payload.Error.Code, payload.Error.Message)
	}
	if payload.Features == nil {
		return nil, fmt.Errorf("%w: missing features", ErrMalformed)
	}

	entries := make([]Entry, 0, len(*payload.Features))
	for _, feature := range *payload.Features {
		entries = append(entries, Entry{
			Province: feature.Attributes.Province,
			Canton:   feature.Attributes.Canton,
			District: feature.Attributes.District,
		})
	}
	return entries, nil
}

// StaticSource serves a fixed list of entries.
type StaticSource struct {
	Entries []Entry
	Err     error
}

// NewStaticSource returns a source seeded with a subset of Costa Rican geography.
func NewStaticSource() *StaticSource {
	return &StaticSource{Entries: SampleEntries()}
}

// Fetch returns a copy of the configured entries.
func (s *StaticSource) Fetch(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]Entry, len(s.Entries))
	copy(out, s.Entries)
	return out, nil
}

// SampleEntries returns development data covering every province.
func SampleEntries() []Entry {
	return []Entry{
		{Province: "San José", Canton: "San José", District: "Carmen"},
		{Province: "San José", Canton: "San José", District: "Merced"},
		{Province: "San José", Canton: "San José", District: "Hospital"},
		{Province: "San José", Canton: "Escazú", District: "Escazú"},
		{Province: "San José", Canton: "Escazú", District: "San Antonio"},
		{Province: "San José", Canton: "Escazú", District: "San Rafael"},
		{Province: "San José", Canton: "Desamparados", District: "Desamparados"},
		{Province: "San José", Canton: "Desamparados", District: "San Miguel"},
		{Province: "Alajuela", Canton: "Alajuela", District: "Alajuela"},
		{Province: "Alajuela", Canton: "Alajuela", District: "San José"},
		{Province: "Alajuela", Canton: "San Ramón", District: "San Ramón"},
		{Province: "Alajuela", Canton: "San Ramón", District: "Ángeles"},
		{Province: "Alajuela", Canton: "Grecia", District: "Grecia"},
		{Province: "Cartago", Canton: "Cartago", District: "Oriental"},
		{Province: "Cartago", Canton: "Cartago", District: "Occidental"},
		{Province: "Cartago", Canton: "Paraíso", District: "Paraíso"},
		{Province: "Cartago", Canton: "Paraíso", District: "Orosi"},
		{Province: "Heredia", Canton: "Heredia", District: "Heredia"},
		{Province: "Heredia", Canton: "Heredia", District: "Mercedes"},
		{Province: "Heredia", Canton: "Barva", District: "Barva"},
		{Province: "Guanacaste", Canton: "Liberia", District: "Liberia"},
		{Province: "Guanacaste", Canton: "Nicoya", District: "Nicoya"},
		{Province: "Guanacaste", Canton: "Nicoya", District: "Sámara"},
		{Province: "Puntarenas", Canton: "Puntarenas", District: "Puntarenas"},
		{Province: "Puntarenas", Canton: "Osa", District: "Puerto Cortés"},
		{Province: "Limón", Canton: "Limón", District: "Limón"},
		{Province: "Limón", Canton: "Talamanca", District: "Cahuita"},
	}
}
