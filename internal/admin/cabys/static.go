package cabys

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/catalog"
)

// StaticService serves a fixed dataset for development and tests.
type StaticService struct {
	Entries []Entry
	Err     error
}

// NewStaticService returns a service seeded with sample CABYS records.
func NewStaticService() *StaticService {
	return &StaticService{Entries: sampleEntries()}
}

// Search matches the term against code, description and categories.
func (s *StaticService) Search(ctx context.Context, term string) ([]Entry, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	fold := cases.Fold()
	needle := fold.String(term)

	var out []Entry
	for _, e := range s.Entries {
		if e.Code == term || strings.Contains(fold.String(e.Description), needle) {
			out = append(out, e)
			continue
		}
		for _, c := range e.Categories {
			if strings.Contains(fold.String(c), needle) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

// Preload returns every entry as a catalogue item.
func (s *StaticService) Preload(ctx context.Context) ([]catalog.Item, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return ToItems(s.Entries), nil
}

func sampleEntries() []Entry {
	iva := decimal.NewFromInt(13)
	reduced := decimal.NewFromInt(1)
	exempt := decimal.Zero
	return []Entry{
		{Code: "2392100000100", Description: "Café sin tostar, sin descafeinar", Categories: []string{"Productos agrícolas", "Café, té y especias", "Café"}, Tax: reduced},
		{Code: "2392200000100", Description: "Café tostado en grano", Categories: []string{"Productos alimenticios", "Café, té y especias", "Café"}, Tax: reduced},
		{Code: "2399100000100", Description: "Té negro fermentado", Categories: []string{"Productos alimenticios", "Café, té y especias", "Té"}, Tax: reduced},
		{Code: "2441000000100", Description: "Agua mineral natural embotellada", Categories: []string{"Productos alimenticios", "Bebidas", "Agua"}, Tax: iva},
		{Code: "2449000000200", Description: "Refrescos gaseosos", Categories: []string{"Productos alimenticios", "Bebidas", "Refrescos"}, Tax: iva},
		{Code: "2311100000100", Description: "Harina de trigo", Categories: []string{"Productos alimenticios", "Molinería", "Harinas"}, Tax: reduced},
		{Code: "0113901000000", Description: "Arroz en granza", Categories: []string{"Productos agrícolas", "Cereales", "Arroz"}, Tax: exempt},
		{Code: "3211200000100", Description: "Papel bond para impresión", Categories: []string{"Productos de papel", "Papel de escritura"}, Tax: iva},
		{Code: "3219300000000", Description: "Cuadernos escolares", Categories: []string{"Productos de papel", "Artículos escolares"}, Tax: exempt},
		{Code: "4523000000100", Description: "Computadoras portátiles", Categories: []string{"Maquinaria de oficina", "Equipo informático", "Computadoras"}, Tax: iva},
		{Code: "4526100000100", Description: "Impresoras láser", Categories: []string{"Maquinaria de oficina", "Equipo informático", "Periféricos"}, Tax: iva},
		{Code: "8314100000100", Description: "Servicios de consultoría en tecnología de la información", Categories: []string{"Servicios profesionales", "Servicios informáticos"}, Tax: iva},
		{Code: "8434200000100", Description: "Licencias de software de aplicación", Categories: []string{"Servicios profesionales", "Servicios informáticos", "Software"}, Tax: iva},
		{Code: "8211100000100", Description: "Servicios de asesoría jurídica", Categories: []string{"Servicios profesionales", "Servicios jurídicos"}, Tax: iva},
		{Code: "9311100000100", Description: "Servicios de consulta médica general", Categories: []string{"Servicios de salud", "Servicios médicos"}, Tax: decimal.NewFromInt(4)},
		{Code: "6421100000100", Description: "Transporte de pasajeros en autobús", Categories: []string{"Servicios de transporte", "Transporte terrestre"}, Tax: exempt},
	}
}
