package ui

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	admincatalog "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/catalog"
	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	catalogtpl "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/catalog"
)

const cabysResultsTarget = "cabys-results"

// CatalogPage renders the preloaded CABYS browser.
func (h *Handlers) CatalogPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	ctx := r.Context()
	view, err := h.catalogView(r)
	table := catalogtpl.NewTable(pathFor(ctx, "/catalog/table"), view.Page(), err)
	data := catalogtpl.PageData{
		Table:      table,
		Categories: catalogtpl.CategoryOptions(view.CategoryOptions(), table.Category),
		SearchPath: pathFor(ctx, "/catalog/search"),
	}
	render(w, r, catalogtpl.Index(data))
}

// CatalogTable renders the table fragment. The URL mirrors the table state so
// reloads land on the same page.
func (h *Handlers) CatalogTable(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	ctx := r.Context()
	tablePath := pathFor(ctx, "/catalog/table")
	view, err := h.catalogView(r)
	table := catalogtpl.NewTable(tablePath, view.Page(), err)

	custommw.PushURL(w, catalogtpl.TableURL(pathFor(ctx, "/catalog"), table.Query, table.Category, table.Page))
	render(w, r, catalogtpl.Table(table))
}

// catalogView replays the query parameters through a fresh view. A change of
// the search box or category select starts over at the first page.
func (h *Handlers) catalogView(r *http.Request) (*admincatalog.View, error) {
	ctx := r.Context()
	items, err := h.library.Items(ctx)
	if err != nil {
		logger(ctx).Warn("catalog: preload failed", zap.Error(err))
		items = nil
	}

	q := r.URL.Query()
	view := admincatalog.NewView(items, h.pageSize)
	view.Update(admincatalog.SetSearchTerm{Term: strings.TrimSpace(q.Get("q"))})
	view.Update(admincatalog.SetCategory{Category: q.Get("category")})

	switch custommw.HTMXInfoFromContext(ctx).TriggerName {
	case "q", "category":
	default:
		if page, convErr := strconv.Atoi(q.Get("page")); convErr == nil && page > 1 {
			view.Update(admincatalog.GoToPage{Page: page - 1})
		}
	}
	return view, err
}

// CabysSearch serves the live lookup modal. Requests targeting the results
// list get only the list back.
func (h *Handlers) CabysSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	ctx := r.Context()
	q := r.URL.Query()
	term := strings.TrimSpace(q.Get("q"))
	selectPath := ""
	if q.Get("select") != "" {
		selectPath = pathFor(ctx, "/products/cabys")
	}
	searchPath := pathFor(ctx, "/catalog/search")
	resultsOnly := custommw.HTMXInfoFromContext(ctx).Target == cabysResultsTarget

	if term == "" && !resultsOnly {
		render(w, r, catalogtpl.Search(catalogtpl.NewSearch(searchPath, selectPath, "", nil, nil)))
		return
	}

	entries, err := h.cabys.Search(ctx, term)
	if err != nil {
		logger(ctx).Warn("cabys: search failed", zap.String("term", term), zap.Error(err))
		entries = nil
	}
	data := catalogtpl.NewSearch(searchPath, selectPath, term, entries, err)
	if resultsOnly {
		render(w, r, catalogtpl.SearchResults(data))
		return
	}
	render(w, r, catalogtpl.Search(data))
}
