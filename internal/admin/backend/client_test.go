package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
)

func TestClientDoSendsJSONWithBearer(t *testing.T) {
	t.Parallel()

	var received map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/base/api/productos", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"p-1"}`))
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient("products", ts.URL+"/base", ts.Client())
	require.NoError(t, err)

	var out struct {
		ID string `json:"id"`
	}
	err = client.Do(context.Background(), http.MethodPost, "/api/productos", "tok", map[string]string{"nombre": "Café & Té"}, &out)
	require.NoError(t, err)
	require.Equal(t, "p-1", out.ID)
	require.Equal(t, "Café & Té", received["nombre"])
}

func TestClientErrorPayload(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","message":"Producto no encontrado"}`))
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient("products", ts.URL, ts.Client())
	require.NoError(t, err)

	err = client.Get(context.Background(), "/api/productos/x", "", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, backend.ErrNotFound))
	require.Equal(t, http.StatusNotFound, backend.StatusCode(err))

	var be *backend.Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, "not_found", be.Code)
	require.Equal(t, "products: backend error (404 not_found): Producto no encontrado", err.Error())
}

func TestClientPlainTextError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient("account", ts.URL, ts.Client())
	require.NoError(t, err)

	err = client.Get(context.Background(), "/api/user", "", nil)
	require.EqualError(t, err, "account: backend error (500): boom")
	require.False(t, errors.Is(err, backend.ErrNotFound))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := backend.NewClient("account", " ", nil)
	require.EqualError(t, err, "account: base URL is required")
}

func TestClientFieldErrors(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Datos inválidos","errors":{"email":["El correo ya existe"],"cedula":"Requerida"}}`))
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient("account", ts.URL, ts.Client())
	require.NoError(t, err)

	err = client.Do(context.Background(), http.MethodPost, "/api/register", "", map[string]string{}, nil)
	var be *backend.Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, map[string]string{"email": "El correo ya existe", "cedula": "Requerida"}, be.Fields)
}
