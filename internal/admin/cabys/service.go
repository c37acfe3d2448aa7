// Package cabys looks up goods and services codes in the Ministerio de
// Hacienda CABYS catalogue.
package cabys

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/catalog"
)

// DefaultBaseURL is the public Hacienda lookup endpoint.
const DefaultBaseURL = "https://api.hacienda.go.cr/fe/cabys"

var (
	// ErrEmptyTerm is returned when a search is submitted without a term.
	ErrEmptyTerm = errors.New("cabys: search term is required")
	// ErrMalformed indicates an unexpected response shape.
	ErrMalformed = errors.New("cabys: malformed response")
)

// Entry is a CABYS record.
type Entry struct {
	Code        string          `json:"codigo"`
	Description string          `json:"descripcion"`
	Categories  []string        `json:"categorias"`
	Tax         decimal.Decimal `json:"impuesto"`
}

// CategoryLabel joins the categories for display, matching what is stored on products.
func (e Entry) CategoryLabel() string {
	var parts []string
	for _, c := range e.Categories {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return "Sin categorías"
	}
	return strings.Join(parts, ", ")
}

// Service exposes both lookup shapes used by the admin UI.
type Service interface {
	// Search runs a live lookup for the term.
	Search(ctx context.Context, term string) ([]Entry, error)
	// Preload returns the records browsed by the paginated catalogue view.
	Preload(ctx context.Context) ([]catalog.Item, error)
}

// ToItem maps an entry onto the fixed category slots of a catalogue item.
// Categories beyond catalog.CategorySlots are dropped.
func ToItem(e Entry) catalog.Item {
	item := catalog.Item{
		Code:        strings.TrimSpace(e.Code),
		Description: strings.TrimSpace(e.Description),
		Tax:         e.Tax,
	}
	for i, c := range e.Categories {
		if i >= catalog.CategorySlots {
			break
		}
		item.Categories[i] = strings.TrimSpace(c)
	}
	return item
}

// ToItems maps entries, dropping duplicate codes while keeping the first occurrence.
func ToItems(entries []Entry) []catalog.Item {
	seen := make(map[string]struct{}, len(entries))
	items := make([]catalog.Item, 0, len(entries))
	for _, e := range entries {
		item := ToItem(e)
		if item.Code == "" {
			continue
		}
		if _, ok := seen[item.Code]; ok {
			continue
		}
		seen[item.Code] = struct{}{}
		items = append(items, item)
	}
	return items
}

// FromItem is the inverse of ToItem for the fields an item carries.
func FromItem(item catalog.Item) Entry {
	e := Entry{Code: item.Code, Description: item.Description, Tax: item.Tax}
	for _, c := range item.Categories {
		if c != "" {
			e.Categories = append(e.Categories, c)
		}
	}
	return e
}

// IsCode reports whether term looks like a 13-digit CABYS code.
func IsCode(term string) bool {
	term = strings.TrimSpace(term)
	if len(term) != 13 {
		return false
	}
	for _, r := range term {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
