package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultPerPage applies when NewView receives a non-positive page size.
const DefaultPerPage = 10

// FilterState holds the active search term and category.
type FilterState struct {
	SearchTerm string
	Category   string
}

// PageState holds the zero-based page cursor.
type PageState struct {
	Current int
	PerPage int
}

// Msg is a view update.
type Msg interface {
	isMsg()
}

type (
	// SetSearchTerm replaces the search term and returns to the first page.
	SetSearchTerm struct{ Term string }
	// SetCategory replaces the category filter and returns to the first page.
	SetCategory struct{ Category string }
	// NextPage advances one page when more results exist.
	NextPage struct{}
	// PrevPage goes back one page when not on the first.
	PrevPage struct{}
	// GoToPage jumps to a page, clamped to the valid range.
	GoToPage struct{ Page int }
)

func (SetSearchTerm) isMsg() {}
func (SetCategory) isMsg()   {}
func (NextPage) isMsg()      {}
func (PrevPage) isMsg()      {}
func (GoToPage) isMsg()      {}

// View derives the visible page of a source slice. The source is never modified.
type View struct {
	source   []Item
	filtered []Item
	filter   FilterState
	page     PageState
	fold     cases.Caser
}

// NewView builds a view over source with no filters applied.
func NewView(source []Item, perPage int) *View {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	v := &View{
		source: source,
		filter: FilterState{Category: AllCategories},
		page:   PageState{PerPage: perPage},
		fold:   cases.Fold(),
	}
	v.refilter()
	return v
}

// Update applies a single message.
func (v *View) Update(msg Msg) {
	switch m := msg.(type) {
	case SetSearchTerm:
		v.filter.SearchTerm = m.Term
		v.refilter()
		v.page.Current = 0
	case SetCategory:
		category := strings.TrimSpace(m.Category)
		if category == "" {
			category = AllCategories
		}
		v.filter.Category = category
		v.refilter()
		v.page.Current = 0
	case NextPage:
		if (v.page.Current+1)*v.page.PerPage < len(v.filtered) {
			v.page.Current++
		}
	case PrevPage:
		if v.page.Current > 0 {
			v.page.Current--
		}
	case GoToPage:
		v.page.Current = clamp(m.Page, 0, v.lastPage())
	}
}

// SetSearchTerm is shorthand for Update(SetSearchTerm{term}).
func (v *View) SetSearchTerm(term string) { v.Update(SetSearchTerm{Term: term}) }

// SetCategory is shorthand for Update(SetCategory{category}).
func (v *View) SetCategory(category string) { v.Update(SetCategory{Category: category}) }

// NextPage is shorthand for Update(NextPage{}).
func (v *View) NextPage() { v.Update(NextPage{}) }

// PrevPage is shorthand for Update(PrevPage{}).
func (v *View) PrevPage() { v.Update(PrevPage{}) }

// Filter returns the active filters.
func (v *View) Filter() FilterState { return v.filter }

// PageState returns the cursor.
func (v *View) PageState() PageState { return v.page }

// Filtered returns the number of items that pass the filters.
func (v *View) Filtered() int { return len(v.filtered) }

// Visible returns the items on the current page.
func (v *View) Visible() []Item {
	n := len(v.filtered)
	if n == 0 {
		return nil
	}
	start := v.page.Current * v.page.PerPage
	end := min(start+v.page.PerPage, n)
	out := make([]Item, end-start)
	copy(out, v.filtered[start:end])
	return out
}

// Page is a render snapshot of the view.
type Page struct {
	Items      []Item
	Current    int
	PerPage    int
	Total      int
	TotalPages int
	HasNext    bool
	HasPrev    bool
	Empty      bool
	Filter     FilterState
}

// Page snapshots the current state.
func (v *View) Page() Page {
	n := len(v.filtered)
	return Page{
		Items:      v.Visible(),
		Current:    v.page.Current,
		PerPage:    v.page.PerPage,
		Total:      n,
		TotalPages: (n + v.page.PerPage - 1) / v.page.PerPage,
		HasNext:    (v.page.Current+1)*v.page.PerPage < n,
		HasPrev:    v.page.Current > 0,
		Empty:      n == 0,
		Filter:     v.filter,
	}
}

// CategoryOptions lists the categories present in the source.
func (v *View) CategoryOptions() []string {
	return CategoryOptions(v.source)
}

func (v *View) refilter() {
	term := v.fold.String(strings.TrimSpace(v.filter.SearchTerm))
	v.filtered = v.filtered[:0:0]
	for _, item := range v.source {
		if v.matchesTerm(item, term) && v.matchesCategory(item) {
			v.filtered = append(v.filtered, item)
		}
	}
}

func (v *View) matchesTerm(item Item, folded string) bool {
	if folded == "" {
		return true
	}
	for _, field := range item.Fields() {
		if strings.Contains(v.fold.String(field), folded) {
			return true
		}
	}
	return false
}

func (v *View) matchesCategory(item Item) bool {
	if v.filter.Category == "" || v.filter.Category == AllCategories {
		return true
	}
	return item.HasCategory(v.filter.Category)
}

func (v *View) lastPage() int {
	n := len(v.filtered)
	if n == 0 {
		return 0
	}
	return (n - 1) / v.page.PerPage
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
