package geo

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Entry is a single province/canton/district record as returned by the reference service.
type Entry struct {
	Province string `json:"province"`
	Canton   string `json:"canton"`
	District string `json:"district"`
}

// Index maps province -> canton -> set of districts. It is immutable once built.
type Index struct {
	provinces map[string]map[string]map[string]struct{}
	districts int
}

// Build folds the entries into an Index, deduplicating districts per canton.
// Entries with a blank level are skipped.
func Build(entries []Entry) *Index {
	idx := &Index{provinces: make(map[string]map[string]map[string]struct{})}
	for _, entry := range entries {
		province := strings.TrimSpace(entry.Province)
		canton := strings.TrimSpace(entry.Canton)
		district := strings.TrimSpace(entry.District)
		if province == "" || canton == "" || district == "" {
			continue
		}

		cantons, ok := idx.provinces[province]
		if !ok {
			cantons = make(map[string]map[string]struct{})
			idx.provinces[province] = cantons
		}
		districts, ok := cantons[canton]
		if !ok {
			districts = make(map[string]struct{})
			cantons[canton] = districts
		}
		if _, exists := districts[district]; exists {
			continue
		}
		districts[district] = struct{}{}
		idx.districts++
	}
	return idx
}

// Empty returns an index without entries.
func Empty() *Index {
	return Build(nil)
}

// Len reports the number of distinct (province, canton, district) triples.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return i.districts
}

// IsEmpty reports whether the index holds no provinces.
func (i *Index) IsEmpty() bool {
	return i == nil || len(i.provinces) == 0
}

// Provinces returns the province names in Spanish collation order.
func (i *Index) Provinces() []string {
	if i == nil {
		return nil
	}
	return sortedKeys(i.provinces)
}

// Cantons returns the cantons of the province, or nil when the province is unknown.
func (i *Index) Cantons(province string) []string {
	if i == nil {
		return nil
	}
	cantons, ok := i.provinces[province]
	if !ok {
		return nil
	}
	return sortedKeys(cantons)
}

// Districts returns the districts of the canton, or nil when the pair is unknown.
func (i *Index) Districts(province, canton string) []string {
	if i == nil {
		return nil
	}
	districts, ok := i.provinces[province][canton]
	if !ok {
		return nil
	}
	return sortedKeys(districts)
}

// HasProvince reports whether the province is present.
func (i *Index) HasProvince(province string) bool {
	if i == nil {
		return false
	}
	_, ok := i.provinces[province]
	return ok
}

// HasCanton reports whether the canton is a key of the province.
func (i *Index) HasCanton(province, canton string) bool {
	if i == nil {
		return false
	}
	_, ok := i.provinces[province][canton]
	return ok
}

// HasDistrict reports whether the district belongs to the (province, canton) pair.
func (i *Index) HasDistrict(province, canton, district string) bool {
	if i == nil {
		return false
	}
	_, ok := i.provinces[province][canton][district]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	SortNames(keys)
	return keys
}

// SortNames sorts the names in place using Spanish collation so accented
// names ("Ángeles") sort next to their unaccented neighbours.
func SortNames(names []string) {
	collate.New(language.Spanish).SortStrings(names)
}
