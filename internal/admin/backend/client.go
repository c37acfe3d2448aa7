// Package backend holds the REST plumbing shared by the services that talk to
// the ManagerSync API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("backend: not found")

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Error is a non-2xx response from the backend.
type Error struct {
	Service string
	Status  int
	Code    string
	Message string
	// Fields carries per-field messages from {"errors":{"field":["msg"]}} payloads.
	Fields map[string]string
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: backend error (%d %s): %s", e.Service, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("%s: backend error (%d): %s", e.Service, e.Status, msg)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// StatusCode extracts the HTTP status of a backend error, or 0.
func StatusCode(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}

// Client issues authenticated JSON requests against a base URL.
type Client struct {
	service string
	base    *url.URL
	client  HTTPClient
}

// NewClient parses baseURL. The service name prefixes every error.
func NewClient(service, baseURL string, client HTTPClient) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%s: base URL is required", service)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base URL: %w", service, err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{service: service, base: parsed, client: client}, nil
}

// Get decodes the JSON response of a GET request into out.
func (c *Client) Get(ctx context.Context, endpoint, token string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, token, nil, out)
}

// Do sends payload as JSON (when non-nil) and decodes a 2xx response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, endpoint, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("%s: encode payload: %w", c.service, err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.service, err)
	}
	return nil
}

func (c *Client) resolve(endpoint string) string {
	if endpoint == "" {
		return c.base.String()
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return c.base.String()
	}
	return c.base.ResolveReference(ref).String()
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	type errorPayload struct {
		Code    string                     `json:"code"`
		Message string                     `json:"message"`
		Error   string                     `json:"error"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	be := &Error{Service: c.service, Status: resp.StatusCode}
	var payload errorPayload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			be.Code = strings.TrimSpace(payload.Code)
			be.Message = payload.Message
			if be.Message == "" {
				be.Message = payload.Error
			}
			be.Fields = fieldMessages(payload.Errors)
		}
		if be.Message == "" && be.Code == "" {
			be.Message = strings.TrimSpace(string(body))
		}
	}
	return be
}

func fieldMessages(raw map[string]json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for field, value := range raw {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			if len(list) > 0 {
				out[field] = list[0]
			}
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil && single != "" {
			out[field] = single
		}
	}
	return out
}
