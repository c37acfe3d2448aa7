package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/backend"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/cabys"
	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	adminproducts "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/products"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/rbac"
	appsession "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
	productstpl "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/products"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

// ProductsPage renders the product list.
func (h *Handlers) ProductsPage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	data := productstpl.ListPageData{
		Table:   h.productsTable(r, user),
		NewPath: pathFor(ctx, "/products/new"),
	}
	render(w, r, productstpl.Index(data))
}

// ProductsTable renders the filtered table fragment.
func (h *Handlers) ProductsTable(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	table := h.productsTable(r, user)
	if table.Error != "" {
		renderStatus(w, r, http.StatusBadGateway, productstpl.Table(table))
		return
	}
	render(w, r, productstpl.Table(table))
}

func (h *Handlers) productsTable(r *http.Request, user *custommw.User) productstpl.TableData {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	list, err := h.products.List(ctx, user.Token, user.CompanyID)
	if err != nil {
		logger(ctx).Warn("products: list failed", zap.Error(err))
	}
	canManage := rbac.HasCapability(user.Roles, rbac.CapProductsManage)
	return productstpl.NewTable(custommw.BasePathFromContext(ctx), pathFor(ctx, "/products/table"), query, adminproducts.Search(list, query), canManage, err)
}

// ProductNew renders an empty product form.
func (h *Handlers) ProductNew(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	values := productstpl.ValuesFromInput(adminproducts.Input{Unit: "Unid"})
	render(w, r, productstpl.FormPage(h.productForm(r, "", values, nil)))
}

// ProductCreate validates and stores a new product.
func (h *Handlers) ProductCreate(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, "")
}

// ProductEdit renders the form for an existing product.
func (h *Handlers) ProductEdit(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "productID")
	product, err := h.products.Get(ctx, user.Token, user.CompanyID, id)
	if err != nil {
		h.productLookupFailed(w, r, id, err)
		return
	}
	values := productstpl.ValuesFromInput(adminproducts.InputFromProduct(*product))
	values["id"] = id
	render(w, r, productstpl.FormPage(h.productForm(r, id, values, nil)))
}

// ProductUpdate validates and stores changes to a product.
func (h *Handlers) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, chi.URLParam(r, "productID"))
}

// ProductDelete removes a product and re-renders the table.
func (h *Handlers) ProductDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "productID")
	if err := h.products.Delete(ctx, user.Token, id); err != nil {
		h.productLookupFailed(w, r, id, err)
		return
	}
	logger(ctx).Info("product deleted", zap.String("product_id", id))

	if !custommw.IsHTMXRequest(ctx) {
		setFlash(r, appsession.FlashSuccess, "Producto eliminado.")
		custommw.Redirect(w, r, pathFor(ctx, "/products"))
		return
	}
	custommw.Trigger(w, "product:deleted")
	render(w, r, productstpl.Table(h.productsTable(r, user)))
}

// ProductCabys fills the CABYS fields of the submitted form from the entry
// picked in the search modal.
func (h *Handlers) ProductCabys(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo leer el formulario.", http.StatusBadRequest)
		return
	}
	values := productstpl.ValuesFromForm(r.PostForm)
	id := values["id"]
	code := strings.TrimSpace(r.URL.Query().Get("codigo"))

	data := h.productForm(r, id, values, nil)
	entry, err := h.findCabys(r, code)
	if err != nil {
		logger(ctx).Warn("cabys: select failed", zap.String("code", code), zap.Error(err))
		data.Error = "No se encontró el código CABYS seleccionado."
		render(w, r, productstpl.Form(data))
		return
	}

	in := adminproducts.Input{Name: values["nombre"]}
	in.Apply(entry)
	values["codigo_cabys"] = in.CabysCode
	values["descripcion"] = in.Description
	values["categoria"] = in.Category
	values["porcentaje_iva"] = in.VATPercentage.String()
	values["nombre"] = in.Name
	render(w, r, productstpl.Form(h.productForm(r, id, values, nil)))
}

func (h *Handlers) findCabys(r *http.Request, code string) (cabys.Entry, error) {
	if !cabys.IsCode(code) {
		return cabys.Entry{}, cabys.ErrMalformed
	}
	entries, err := h.cabys.Search(r.Context(), code)
	if err != nil {
		return cabys.Entry{}, err
	}
	for _, e := range entries {
		if e.Code == code {
			return e, nil
		}
	}
	return cabys.Entry{}, backend.ErrNotFound
}

func (h *Handlers) saveProduct(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo leer el formulario.", http.StatusBadRequest)
		return
	}

	values := productstpl.ValuesFromForm(r.PostForm)
	if id != "" {
		values["id"] = id
	}
	in, parseErrs := adminproducts.ParseInput(r.PostForm)
	if errs := in.Validate(parseErrs); errs != nil {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, h.productForm(r, id, values, errs))
		return
	}

	product := in.Product(user.CompanyID)
	var err error
	if id == "" {
		_, err = h.products.Create(ctx, user.Token, product)
	} else {
		_, err = h.products.Update(ctx, user.Token, id, product)
	}
	if err != nil {
		logger(ctx).Warn("products: save failed", zap.String("product_id", id), zap.Error(err))
		data := h.productForm(r, id, values, account.BackendFieldErrors(err))
		data.Error = "No se pudo guardar el producto. Revise los datos e intente de nuevo."
		status := http.StatusBadGateway
		if errors.Is(err, adminproducts.ErrNotFound) {
			status = http.StatusNotFound
		} else if data.Errors != nil {
			status = http.StatusUnprocessableEntity
		}
		h.renderProductForm(w, r, status, data)
		return
	}

	message := "Producto creado."
	if id != "" {
		message = "Producto actualizado."
	}
	logger(ctx).Info("product saved", zap.String("product_id", id), zap.String("code", product.Code))
	setFlash(r, appsession.FlashSuccess, message)
	custommw.Redirect(w, r, pathFor(ctx, "/products"))
}

func (h *Handlers) productForm(r *http.Request, id string, values map[string]string, errs validation.FieldErrors) productstpl.FormData {
	ctx := r.Context()
	title, action := "Nuevo producto", pathFor(ctx, "/products")
	if id != "" {
		title, action = "Editar producto", pathFor(ctx, "/products/"+url.PathEscape(id))
	}
	data := productstpl.NewForm(title, action, values, errs)
	data.IsEdit = id != ""
	data.CancelPath = pathFor(ctx, "/products")
	data.CabysSearchPath = pathFor(ctx, "/catalog/search?select=1")
	data.CSRFToken = custommw.CSRFTokenFromContext(ctx)
	return data
}

// renderProductForm swaps only the form for htmx requests, which do not swap
// error responses.
func (h *Handlers) renderProductForm(w http.ResponseWriter, r *http.Request, status int, data productstpl.FormData) {
	if custommw.IsHTMXRequest(r.Context()) {
		render(w, r, productstpl.Form(data))
		return
	}
	renderStatus(w, r, status, productstpl.FormPage(data))
}

func (h *Handlers) productLookupFailed(w http.ResponseWriter, r *http.Request, id string, err error) {
	logger(r.Context()).Warn("products: lookup failed", zap.String("product_id", id), zap.Error(err))
	if errors.Is(err, adminproducts.ErrNotFound) {
		http.Error(w, "Producto no encontrado.", http.StatusNotFound)
		return
	}
	http.Error(w, "No se pudo consultar el producto. Intente de nuevo más tarde.", http.StatusBadGateway)
}

func setFlash(r *http.Request, kind appsession.FlashKind, message string) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.SetFlash(kind, message)
	}
}
