package ui

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	appsession "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
	accounttpl "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/account"
)

// AccountPage renders the signed-in user's settings.
func (h *Handlers) AccountPage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	profile, err := h.accounts.Profile(ctx, user.Token)
	if err != nil {
		logger(ctx).Warn("account: fetch profile failed", zap.Error(err))
		http.Error(w, "No se pudo cargar su perfil. Intente de nuevo más tarde.", http.StatusBadGateway)
		return
	}

	csrf := custommw.CSRFTokenFromContext(ctx)
	data := accounttpl.NewPage(pathFor(ctx, "/account"), pathFor(ctx, "/account/delete"), *profile)
	data.CSRFToken = csrf
	data.Form.CSRFToken = csrf
	render(w, r, accounttpl.Page(data))
}

// AccountUpdate saves the profile form.
func (h *Handlers) AccountUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo leer el formulario.", http.StatusBadRequest)
		return
	}

	update := account.ParseProfileUpdate(r.PostForm)
	form := accounttpl.NewForm(pathFor(ctx, "/account"), accounttpl.ValuesFromUpdate(update), update.Validate())
	form.CSRFToken = custommw.CSRFTokenFromContext(ctx)
	if form.Errors != nil {
		h.renderAccountForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	profile, err := h.accounts.UpdateProfile(ctx, user.Token, update)
	if err != nil {
		logger(ctx).Warn("account: update profile failed", zap.Error(err))
		form.Errors = account.BackendFieldErrors(err)
		form.Error = "No se pudo actualizar el perfil."
		status := http.StatusBadGateway
		if form.Errors != nil {
			status = http.StatusUnprocessableEntity
		}
		h.renderAccountForm(w, r, status, form)
		return
	}

	updated := *user
	updated.Name, updated.Email = profile.Name, profile.Email
	custommw.StoreUser(ctx, &updated)
	logger(ctx).Info("account profile updated")

	if !custommw.IsHTMXRequest(ctx) {
		setFlash(r, appsession.FlashSuccess, "Perfil actualizado.")
		custommw.Redirect(w, r, pathFor(ctx, "/account"))
		return
	}
	form.Values = accounttpl.ValuesFromProfile(*profile)
	form.Saved = true
	render(w, r, accounttpl.Form(form))
}

// AccountDelete removes the account and signs the user out.
func (h *Handlers) AccountDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := h.accounts.DeleteAccount(ctx, user.Token); err != nil {
		logger(ctx).Warn("account: delete failed", zap.Error(err))
		setFlash(r, appsession.FlashError, "No se pudo eliminar la cuenta. Intente de nuevo más tarde.")
		custommw.Redirect(w, r, pathFor(ctx, "/account"))
		return
	}
	logger(ctx).Info("account deleted")

	if sess, ok := custommw.SessionFromContext(ctx); ok {
		sess.Destroy()
	}
	custommw.ClearTokenCookie(w, custommw.BasePathFromContext(ctx))
	custommw.Redirect(w, r, pathFor(ctx, "/login?status=deleted"))
}

func (h *Handlers) renderAccountForm(w http.ResponseWriter, r *http.Request, status int, form accounttpl.FormData) {
	if custommw.IsHTMXRequest(r.Context()) {
		render(w, r, accounttpl.Form(form))
		return
	}
	// Full page needs the profile header; fall back to the submitted values.
	page := accounttpl.PageData{
		Form:       form,
		DeletePath: pathFor(r.Context(), "/account/delete"),
		CSRFToken:  form.CSRFToken,
	}
	renderStatus(w, r, status, accounttpl.Page(page))
}
