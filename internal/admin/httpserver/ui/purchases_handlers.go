package ui

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/issuer"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/purchases"
	appsession "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
	purchasestpl "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/purchases"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

// draftSessionKey stores the purchase being prepared.
const draftSessionKey = "purchase"

// PurchasePage renders the purchase header of the current draft.
func (h *Handlers) PurchasePage(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	draft := loadDraft(r.Context())
	render(w, r, purchasestpl.Page(h.purchasePage(r, draft, draft.Header, nil)))
}

// PurchaseSubmit validates the header and stores it in the draft.
func (h *Handlers) PurchaseSubmit(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo leer el formulario.", http.StatusBadRequest)
		return
	}

	draft := loadDraft(ctx)
	header := purchases.ParseHeader(r.PostForm)
	isHTMX := custommw.IsHTMXRequest(ctx)
	if errs := header.Validate(); errs != nil {
		data := h.purchasePage(r, draft, header, errs)
		if isHTMX {
			render(w, r, purchasestpl.Form(data))
			return
		}
		renderStatus(w, r, http.StatusUnprocessableEntity, purchasestpl.Page(data))
		return
	}

	draft.Header = header
	draft.HeaderOK = true
	if err := saveDraft(ctx, draft); err != nil {
		logger(ctx).Error("purchases: store draft failed", zap.Error(err))
		http.Error(w, "No se pudo guardar el borrador.", http.StatusInternalServerError)
		return
	}
	logger(ctx).Info("purchase header saved", zap.Bool("ready", draft.Ready()))

	if !isHTMX {
		setFlash(r, appsession.FlashSuccess, "Encabezado guardado.")
		custommw.Redirect(w, r, pathFor(ctx, "/purchases/new"))
		return
	}
	data := h.purchasePage(r, draft, header, nil)
	data.Saved = true
	render(w, r, purchasestpl.Form(data))
}

func (h *Handlers) purchasePage(r *http.Request, draft purchases.Draft, header purchases.Header, errs validation.FieldErrors) purchasestpl.PageData {
	ctx := r.Context()
	href := func(kind issuer.Kind) string {
		if kind == issuer.KindProvider {
			return pathFor(ctx, "/provider")
		}
		return pathFor(ctx, "/issuer")
	}
	data := purchasestpl.NewPage(pathFor(ctx, "/purchases/new"), draft, header, errs, href)
	data.CSRFToken = custommw.CSRFTokenFromContext(ctx)
	return data
}

// loadDraft returns the draft stored in the session, or a new one.
func loadDraft(ctx context.Context) purchases.Draft {
	sess, ok := custommw.SessionFromContext(ctx)
	if !ok {
		return purchases.NewDraft()
	}
	var draft purchases.Draft
	found, err := sess.Get(draftSessionKey, &draft)
	if err != nil {
		logger(ctx).Warn("purchases: decode draft failed", zap.Error(err))
	}
	if !found || err != nil {
		return purchases.NewDraft()
	}
	return draft
}

func saveDraft(ctx context.Context, draft purchases.Draft) error {
	sess, ok := custommw.SessionFromContext(ctx)
	if !ok {
		return nil
	}
	return sess.Put(draftSessionKey, draft)
}
