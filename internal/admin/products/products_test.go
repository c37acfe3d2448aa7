package products_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/cabys"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/products"
)

func TestHTTPServiceListFiltersByCompany(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/productos/all", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":7,"empresa_id":3,"codigo_producto":"A1","nombre":"Arroz","precio_compra":"850.50","precio_consumidor":1200,"stock":4},
			{"id":8,"empresa_id":"4","codigo_producto":"B1","nombre":"Frijoles","precio_compra":900,"precio_consumidor":1300,"stock":2}
		]`))
	}))
	t.Cleanup(ts.Close)

	svc, err := products.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	list, err := svc.List(context.Background(), "tok", "3")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "7", list[0].ID.String())
	require.True(t, decimal.RequireFromString("850.5").Equal(list[0].PurchasePrice))
}

func TestHTTPServiceUpdateAndDelete(t *testing.T) {
	t.Parallel()

	var received products.Product
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			require.Equal(t, "/api/productos/42", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_, _ = w.Write([]byte(`{"message":"Producto actualizado"}`))
		case http.MethodDelete:
			if r.URL.Path == "/api/productos/missing" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{"message":"Producto eliminado"}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	t.Cleanup(ts.Close)

	svc, err := products.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "", "42", products.Product{CompanyID: "3", Code: "A1", Name: "Arroz"})
	require.NoError(t, err)
	require.Equal(t, "42", updated.ID.String())
	require.Equal(t, "Arroz", received.Name)

	require.NoError(t, svc.Delete(context.Background(), "", "42"))
	require.ErrorIs(t, svc.Delete(context.Background(), "", "missing"), products.ErrNotFound)
}

func TestStaticServiceCRUD(t *testing.T) {
	t.Parallel()

	svc := products.NewStaticService()
	ctx := context.Background()

	list, err := svc.List(ctx, "", "1")
	require.NoError(t, err)
	require.Len(t, list, 3)

	created, err := svc.Create(ctx, "", products.Product{CompanyID: "1", Code: "NEW-1", Name: "Nuevo"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, "", "1", created.ID.String())
	require.NoError(t, err)
	require.Equal(t, "Nuevo", got.Name)

	_, err = svc.Get(ctx, "", "2", created.ID.String())
	require.ErrorIs(t, err, products.ErrNotFound)

	_, err = svc.Update(ctx, "", created.ID.String(), products.Product{CompanyID: "1", Code: "NEW-1", Name: "Renombrado"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "", created.ID.String()))
	list, err = svc.List(ctx, "", "1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.ErrorIs(t, svc.Delete(ctx, "", created.ID.String()), products.ErrNotFound)
}

func TestSearchMatchesNameOrCode(t *testing.T) {
	t.Parallel()

	list, err := products.NewStaticService().List(context.Background(), "", "1")
	require.NoError(t, err)

	require.Len(t, products.Search(list, "CAFÉ"), 1)
	require.Len(t, products.Search(list, "srv-"), 1)
	require.Len(t, products.Search(list, ""), 3)
	require.Empty(t, products.Search(list, "inexistente"))
}

func TestParseInputValidation(t *testing.T) {
	t.Parallel()

	in, parseErrs := products.ParseInput(url.Values{
		"codigo_producto":      {"A-1"},
		"codigo_cabys":         {"12345"},
		"nombre":               {""},
		"descripcion":          {"Algo"},
		"precio_compra":        {"abc"},
		"precio_consumidor":    {"1500,50"},
		"stock":                {"-2"},
		"unidad_medida":        {"Unid"},
		"porcentaje_descuento": {"150"},
	})
	errs := in.Validate(parseErrs)
	require.Equal(t, "Debe ser numérico", errs.Get("precio_compra"))
	require.Equal(t, "Campo obligatorio", errs.Get("nombre"))
	require.Equal(t, "Debe tener exactamente 13 caracteres", errs.Get("codigo_cabys"))
	require.Equal(t, "Debe ser mayor o igual a 0", errs.Get("stock"))
	require.Equal(t, "Debe ser menor o igual a 100", errs.Get("porcentaje_descuento"))
	require.Empty(t, errs.Get("precio_consumidor"))
	require.True(t, decimal.RequireFromString("1500.5").Equal(in.ConsumerPrice))
}

func TestParseInputValid(t *testing.T) {
	t.Parallel()

	in, parseErrs := products.ParseInput(url.Values{
		"codigo_producto":   {"A-1"},
		"codigo_cabys":      {"2392200000100"},
		"nombre":            {"Café"},
		"descripcion":       {"Café tostado"},
		"precio_compra":     {"1000"},
		"precio_consumidor": {"1500"},
		"stock":             {"3"},
		"unidad_medida":     {"Unid"},
		"porcentaje_iva":    {"13"},
	})
	require.Nil(t, in.Validate(parseErrs))

	p := in.Product("9")
	require.Equal(t, "9", p.CompanyID.String())
	require.Equal(t, "1695", p.PriceWithVAT().String())
}

func TestInputApplyCabys(t *testing.T) {
	t.Parallel()

	in := products.Input{}
	in.Apply(cabys.Entry{
		Code:        "2392200000100",
		Description: "Café tostado en grano",
		Categories:  []string{"Productos alimenticios", "Café"},
		Tax:         decimal.NewFromInt(1),
	})
	require.Equal(t, "2392200000100", in.CabysCode)
	require.Equal(t, "Café tostado en grano", in.Name)
	require.Equal(t, "Productos alimenticios, Café", in.Category)
	require.True(t, decimal.NewFromInt(1).Equal(in.VATPercentage))

	named := products.Input{Name: "Mi café"}
	named.Apply(cabys.Entry{Code: "1", Description: "Otro"})
	require.Equal(t, "Mi café", named.Name)
	require.Equal(t, "Sin categorías", named.Category)
}

func TestPriceWithVATAppliesDiscountFirst(t *testing.T) {
	t.Parallel()

	p := products.Product{
		ConsumerPrice:      decimal.NewFromInt(700),
		DiscountPercentage: decimal.NewFromInt(5),
		VATPercentage:      decimal.NewFromInt(13),
	}
	// 700 - 35 = 665; 665 * 1.13 = 751.45
	require.Equal(t, "751.45", p.PriceWithVAT().String())
}
