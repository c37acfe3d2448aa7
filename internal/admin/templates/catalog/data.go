// Package catalog renders the CABYS browser and the live search modal.
package catalog

import (
	"embed"
	"errors"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/cabys"
	admincatalog "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/catalog"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/helpers"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/layout"
)

//go:embed *.html
var files embed.FS

var views = helpers.ParseViews("catalog", files)

// PageData is the catalogue page payload.
type PageData struct {
	Table      TableData
	Categories []helpers.Option
	SearchPath string
}

// TableData is the paginated table fragment. Page numbers are one-based.
type TableData struct {
	Rows       []Row
	Query      string
	Category   string
	Page       int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
	TablePath  string
	Empty      bool
	Error      string
}

// Row is a rendered catalogue item.
type Row struct {
	Code        []helpers.HighlightSegment
	Description []helpers.HighlightSegment
	Categories  []string
	Tax         string
}

// NewTable builds the table fragment for page. loadErr replaces the rows with
// an error notice.
func NewTable(tablePath string, page admincatalog.Page, loadErr error) TableData {
	data := TableData{
		Query:      page.Filter.SearchTerm,
		Category:   page.Filter.Category,
		Page:       page.Current + 1,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		TablePath:  tablePath,
		Empty:      page.Empty,
	}
	if loadErr != nil {
		data.Error = "No se pudo cargar el catálogo CABYS. Intente de nuevo más tarde."
		data.Empty = true
		return data
	}
	for _, item := range page.Items {
		row := Row{
			Code:        helpers.HighlightSegments(item.Code, data.Query),
			Description: helpers.HighlightSegments(item.Description, data.Query),
			Tax:         helpers.Percent(item.Tax),
		}
		for _, c := range item.Categories {
			if c != "" {
				row.Categories = append(row.Categories, c)
			}
		}
		data.Rows = append(data.Rows, row)
	}
	if data.HasPrev {
		data.PrevURL = TableURL(tablePath, data.Query, data.Category, data.Page-1)
	}
	if data.HasNext {
		data.NextURL = TableURL(tablePath, data.Query, data.Category, data.Page+1)
	}
	return data
}

// TableURL encodes the table state as a query string.
func TableURL(path, query, category string, page int) string {
	values := url.Values{}
	if query != "" {
		values.Set("q", query)
	}
	if category != "" && category != admincatalog.AllCategories {
		values.Set("category", category)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	return helpers.BuildURL(path, values.Encode())
}

// CategoryOptions lists the category filter options with an "all" entry first.
func CategoryOptions(categories []string, selected string) []helpers.Option {
	opts := []helpers.Option{{Value: admincatalog.AllCategories, Label: "Todas las categorías", Selected: selected == "" || selected == admincatalog.AllCategories}}
	for _, c := range categories {
		opts = append(opts, helpers.Option{Value: c, Label: c, Selected: c == selected})
	}
	return opts
}

// SearchData is the live CABYS search modal.
type SearchData struct {
	Term       string
	Results    []SearchRow
	Error      string
	Searched   bool
	SearchPath string
	SelectPath string
	FormTarget string
}

// SearchRow is a single live search result.
type SearchRow struct {
	Code        string
	Description []helpers.HighlightSegment
	Categories  string
	Tax         string
	SelectURL   string
}

// NewSearch builds the modal state for a completed lookup. selectPath enables
// the per-row select action that fills the product form.
func NewSearch(searchPath, selectPath, term string, entries []cabys.Entry, err error) SearchData {
	data := SearchData{
		Term:       term,
		Searched:   term != "",
		SearchPath: searchPath,
		SelectPath: selectPath,
		FormTarget: "#product-form",
	}
	switch {
	case err == nil:
	case errors.Is(err, cabys.ErrEmptyTerm):
		data.Error = "Ingrese un término o código CABYS para buscar."
		return data
	default:
		data.Error = "No se pudo consultar el catálogo CABYS. Intente de nuevo."
		return data
	}
	for _, e := range entries {
		row := SearchRow{
			Code:        e.Code,
			Description: helpers.HighlightSegments(e.Description, term),
			Categories:  e.CategoryLabel(),
			Tax:         helpers.Percent(e.Tax),
		}
		if selectPath != "" {
			row.SelectURL = helpers.BuildURL(selectPath, url.Values{"codigo": {e.Code}}.Encode())
		}
		data.Results = append(data.Results, row)
	}
	return data
}

// Index renders the catalogue page.
func Index(data PageData) templ.Component {
	return layout.Page("Catálogo CABYS", views.Component("page", data))
}

// Table renders the table fragment.
func Table(data TableData) templ.Component {
	return views.Component("table", data)
}

// Search renders the search modal with its results.
func Search(data SearchData) templ.Component {
	return views.Component("search", data)
}

// SearchResults renders only the result list.
func SearchResults(data SearchData) templ.Component {
	return views.Component("search-results", data)
}
