// Package catalog filters and paginates a pre-loaded list of CABYS items.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategorySlots is the number of hierarchical category levels carried by an item.
const CategorySlots = 8

// AllCategories disables the category predicate.
const AllCategories = "all"

// Item is a single catalog record.
type Item struct {
	Code        string
	Description string
	Categories  [CategorySlots]string
	Tax         decimal.Decimal
	Notes       string
}

// Fields lists every field value as text. It is the surface searched by the term filter.
func (i Item) Fields() []string {
	fields := make([]string, 0, CategorySlots+4)
	fields = append(fields, i.Code, i.Description)
	for _, category := range i.Categories {
		if category != "" {
			fields = append(fields, category)
		}
	}
	fields = append(fields, i.Tax.String())
	if i.Notes != "" {
		fields = append(fields, i.Notes)
	}
	return fields
}

// HasCategory reports whether any slot equals category.
func (i Item) HasCategory(category string) bool {
	for _, slot := range i.Categories {
		if slot != "" && slot == category {
			return true
		}
	}
	return false
}

// PrimaryCategory returns the first non-empty slot.
func (i Item) PrimaryCategory() string {
	for _, slot := range i.Categories {
		if strings.TrimSpace(slot) != "" {
			return slot
		}
	}
	return ""
}

// CategoryOptions returns the distinct non-empty category values of items in collation order.
func CategoryOptions(items []Item) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range items {
		for _, slot := range item.Categories {
			if slot == "" {
				continue
			}
			if _, ok := seen[slot]; ok {
				continue
			}
			seen[slot] = struct{}{}
			out = append(out, slot)
		}
	}
	collate.New(language.Spanish).SortStrings(out)
	return out
}
