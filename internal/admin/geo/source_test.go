package geo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
)

func TestArcGISSourceFetch(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "1=1", r.URL.Query().Get("where"))
		require.Equal(t, "*", r.URL.Query().Get("outFields"))
		require.Equal(t, "4326", r.URL.Query().Get("outSR"))
		require.Equal(t, "json", r.URL.Query().Get("f"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[
			{"attributes":{"NOM_PROV":"Heredia","NOM_CANT":"Barva","NOM_DIST":"Barva","OBJECTID":1}},
			{"attributes":{"NOM_PROV":"Heredia","NOM_CANT":"Barva","NOM_DIST":"San Pedro","OBJECTID":2}}
		]}`))
	}))
	t.Cleanup(ts.Close)

	src, err := geo.NewArcGISSource(ts.URL, ts.Client())
	require.NoError(t, err)

	entries, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []geo.Entry{
		{Province: "Heredia", Canton: "Barva", District: "Barva"},
		{Province: "Heredia", Canton: "Barva", District: "San Pedro"},
	}, entries)
}

func TestArcGISSourceMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"error envelope":   `{"error":{"code":400,"message":"Invalid query"}}`,
		"missing features": `{"fields":[]}`,
		"not json":         `<html>maintenance</html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			t.Cleanup(ts.Close)

			src, err := geo.NewArcGISSource(ts.URL, ts.Client())
			require.NoError(t, err)

			_, err = src.Fetch(context.Background())
			require.Error(t, err)
			require.True(t, errors.Is(err, geo.ErrMalformed))
		})
	}
}

func TestArcGISSourceStatusError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	src, err := geo.NewArcGISSource(ts.URL, ts.Client())
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	require.ErrorIs(t, err, geo.ErrUnavailable)
}

func TestLoaderFailureReturnsEmptyIndex(t *testing.T) {
	t.Parallel()

	loader := geo.NewLoader(&geo.StaticSource{Err: errors.New("offline")})
	idx, err := loader.Load(context.Background())
	require.Error(t, err)
	require.NotNil(t, idx)
	require.True(t, idx.IsEmpty())
}
