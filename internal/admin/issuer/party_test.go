package issuer

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/selector"
)

func TestValidateRequiredFields(t *testing.T) {
	t.Parallel()

	errs := Validate(ParseParty(url.Values{}))
	for _, field := range []string{"identificacion", "telefono", "nombre", "correoElectronico", "direccionExacta"} {
		require.Equal(t, "Campo obligatorio", errs.Get(field), field)
	}
	require.Empty(t, errs.Get("tipoIdentificacion"))
}

func TestValidateEmailAndIDType(t *testing.T) {
	t.Parallel()

	p := validParty()
	p.Email = "correo@"
	p.IDType = "99"
	errs := Validate(p)
	require.Equal(t, "Correo electrónico inválido", errs.Get("correoElectronico"))
	require.Equal(t, "Opción inválida", errs.Get("tipoIdentificacion"))
}

func TestValidateAcceptsCompleteParty(t *testing.T) {
	t.Parallel()

	require.Nil(t, Validate(validParty()))
}

func TestParsePartyNormalisesLocation(t *testing.T) {
	t.Parallel()

	p := ParseParty(url.Values{
		"nombre":    {"  Distribuidora Central  "},
		"provincia": {"Heredia"},
	})
	require.Equal(t, "Distribuidora Central", p.Name)
	require.Equal(t, IDPhysical, p.IDType)
	require.Equal(t, selector.Selection{Province: "Heredia", Canton: selector.NotApplicable, District: selector.NotApplicable}, p.Location)
}

func TestKindAndIDTypeLabels(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Emisor", KindIssuer.Title())
	require.Equal(t, "Proveedor", KindProvider.Title())
	require.Equal(t, "Cédula Jurídica", IDJuridical.Label())
	require.Len(t, IDTypes(), 4)
}

func validParty() Party {
	return Party{
		Identification: "3101123456",
		IDType:         IDJuridical,
		Phone:          "22223333",
		Name:           "Comercial Tica S.A.",
		Email:          "facturas@comercialtica.cr",
		Address:        "100 m norte del parque",
	}
}
