package ui

import (
	"net/http"

	"go.uber.org/zap"

	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/issuer"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/selector"
	appsession "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
	partiestpl "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/parties"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/validation"
)

// PartyForm renders the issuer or provider form with the party stored in the draft.
func (h *Handlers) PartyForm(kind issuer.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}
		ctx := r.Context()
		h.geo.Activate(ctx)

		party := loadDraft(ctx).Party(kind)
		if party.IDType == "" {
			party.IDType = issuer.IDPhysical
		}
		render(w, r, partiestpl.FormPage(h.partyForm(r, kind, party, nil)))
	}
}

// PartySubmit validates the form and stores the party in the draft.
func (h *Handlers) PartySubmit(kind issuer.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			http.Error(w, "No se pudo leer el formulario.", http.StatusBadRequest)
			return
		}

		party := issuer.ParseParty(r.PostForm)
		sel := selector.New(h.geo.Index)
		sel.Restore(party.Location)
		party.Location = sel.Selection()

		isHTMX := custommw.IsHTMXRequest(ctx)
		if errs := issuer.Validate(party); errs != nil {
			data := h.partyForm(r, kind, party, errs)
			if isHTMX {
				render(w, r, partiestpl.Form(data))
				return
			}
			renderStatus(w, r, http.StatusUnprocessableEntity, partiestpl.FormPage(data))
			return
		}

		draft := loadDraft(ctx)
		draft.SetParty(kind, party)
		if err := saveDraft(ctx, draft); err != nil {
			logger(ctx).Error("purchases: store draft failed", zap.Error(err))
			http.Error(w, "No se pudo guardar el borrador.", http.StatusInternalServerError)
			return
		}
		logger(ctx).Info("party saved", zap.String("kind", string(kind)))

		data := h.partyForm(r, kind, party, nil)
		if !isHTMX {
			setFlash(r, appsession.FlashSuccess, kind.Title()+" guardado.")
			custommw.Redirect(w, r, data.NextPath)
			return
		}
		data.Saved = true
		custommw.Trigger(w, "party:saved")
		render(w, r, partiestpl.Form(data))
	}
}

// GeoAddress re-renders the cascading selects. The select that fired the
// request decides which lower levels are reset.
func (h *Handlers) GeoAddress(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo leer el formulario.", http.StatusBadRequest)
		return
	}
	h.geo.Activate(ctx)

	submitted := selector.Selection{
		Province: r.PostForm.Get("provincia"),
		Canton:   r.PostForm.Get("canton"),
		District: r.PostForm.Get("distrito"),
	}
	sel := selector.New(h.geo.Index)
	switch custommw.HTMXInfoFromContext(ctx).TriggerName {
	case "provincia":
		sel.Update(selector.SetProvince{Value: submitted.Province})
	case "canton":
		sel.Update(selector.SetProvince{Value: submitted.Province})
		sel.Update(selector.SetCanton{Value: submitted.Canton})
	default:
		sel.Restore(submitted)
	}

	address := partiestpl.NewAddress(pathFor(ctx, "/geo/address"), sel, h.geo.State(), r.PostForm.Get("barrio"))
	render(w, r, partiestpl.Address(address))
}

func (h *Handlers) partyForm(r *http.Request, kind issuer.Kind, party issuer.Party, errs validation.FieldErrors) partiestpl.FormData {
	ctx := r.Context()
	sel := selector.New(h.geo.Index)
	sel.Restore(party.Location)
	address := partiestpl.NewAddress(pathFor(ctx, "/geo/address"), sel, h.geo.State(), party.Barrio)

	action, next := pathFor(ctx, "/issuer"), pathFor(ctx, "/provider")
	if kind == issuer.KindProvider {
		action, next = pathFor(ctx, "/provider"), pathFor(ctx, "/purchases/new")
	}
	data := partiestpl.NewForm(kind, action, party, address, errs)
	data.NextPath = next
	data.CSRFToken = custommw.CSRFTokenFromContext(ctx)
	return data
}
