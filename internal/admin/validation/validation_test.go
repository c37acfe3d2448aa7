package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string          `form:"nombre" validate:"required"`
	Email    string          `form:"correo" validate:"required,email"`
	Price    decimal.Decimal `form:"precio" validate:"gte=0"`
	Percent  decimal.Decimal `form:"porcentaje" validate:"gte=0,lte=100"`
	Password string          `json:"password" validate:"min=8"`
	Confirm  string          `json:"confirm" validate:"eqfield=Password"`
}

func TestStructReportsFormFieldNames(t *testing.T) {
	t.Parallel()

	errs := Struct(sample{
		Email:    "no-es-correo",
		Price:    decimal.NewFromInt(-1),
		Percent:  decimal.RequireFromString("100.5"),
		Password: "corta",
		Confirm:  "otra",
	})
	require.Equal(t, "Campo obligatorio", errs.Get("nombre"))
	require.Equal(t, "Correo electrónico inválido", errs.Get("correo"))
	require.Equal(t, "Debe ser mayor o igual a 0", errs.Get("precio"))
	require.Equal(t, "Debe ser menor o igual a 100", errs.Get("porcentaje"))
	require.Equal(t, "Debe tener al menos 8 caracteres", errs.Get("password"))
	require.Equal(t, "Los valores no coinciden", errs.Get("confirm"))
}

func TestStructValid(t *testing.T) {
	t.Parallel()

	errs := Struct(sample{
		Name:     "Ana",
		Email:    "ana@example.com",
		Price:    decimal.NewFromFloat(1500.25),
		Percent:  decimal.NewFromInt(13),
		Password: "secreto123",
		Confirm:  "secreto123",
	})
	require.Nil(t, errs)
	require.True(t, errs.Empty())
}

func TestFieldErrorsAddKeepsFirst(t *testing.T) {
	t.Parallel()

	errs := FieldErrors{}
	errs.Add("x", "primero")
	errs.Add("x", "segundo")
	require.Equal(t, "primero", errs.Get("x"))
	require.Contains(t, errs.Error(), "x: primero")
}
