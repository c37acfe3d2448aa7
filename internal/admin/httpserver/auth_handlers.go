package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/account"
	custommw "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/httpserver/middleware"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/navigation"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/observability"
	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/templates/auth"
)

type authHandlers struct {
	authenticator custommw.Authenticator
	accounts      account.Service
	basePath      string
	loginPath     string
	registerPath  string
}

func newAuthHandlers(authenticator custommw.Authenticator, accounts account.Service, basePath, loginPath string) *authHandlers {
	if authenticator == nil {
		panic("auth: authenticator is required")
	}
	if strings.TrimSpace(basePath) == "" {
		basePath = "/"
	}
	if strings.TrimSpace(loginPath) == "" {
		loginPath = navigation.Join(basePath, "/login")
	}
	return &authHandlers{
		authenticator: authenticator,
		accounts:      accounts,
		basePath:      basePath,
		loginPath:     loginPath,
		registerPath:  navigation.Join(basePath, "/register"),
	}
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) && !forceLogin(r) {
		target := h.redirectTarget(r.URL.Query().Get("next"))
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	data := h.buildLoginPageData(r, nil)
	h.renderLoginPage(w, r, data, http.StatusOK)
}

// LoginSubmit accepts either email and password, checked against the
// backend, or an ID token resolved by the authenticator.
func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		state := &loginFormState{Error: "No se pudo enviar el formulario. Intente de nuevo."}
		data := h.buildLoginPageData(r, state)
		h.renderLoginPage(w, r, data, http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	recordedNext := r.PostFormValue("next")
	remember := parseCheckbox(r.PostFormValue("remember"))
	token := strings.TrimSpace(r.PostFormValue("id_token"))

	state := &loginFormState{
		Email:    email,
		Remember: remember,
		Next:     recordedNext,
	}

	var (
		user *custommw.User
		err  error
	)
	switch {
	case token != "":
		user, err = h.authenticator.Authenticate(r, token)
	case email != "" && password != "":
		user, err = h.passwordLogin(r, email, password)
	default:
		state.Error = "Ingrese su correo y contraseña."
		data := h.buildLoginPageData(r, state)
		h.renderLoginPage(w, r, data, http.StatusBadRequest)
		return
	}
	if err != nil || user == nil {
		logger.Info("admin login failed", zap.String("email", email), zap.Error(err))
		state.Error = h.errorMessageFor(err)
		data := h.buildLoginPageData(r, state)
		h.renderLoginPage(w, r, data, http.StatusUnauthorized)
		return
	}

	if user.Token == "" {
		user.Token = token
	}
	if user.Email == "" {
		user.Email = email
	}
	sess, _ := custommw.SessionFromContext(r.Context())
	if sess != nil {
		custommw.StoreUser(r.Context(), user)
		sess.SetRememberMe(remember)
	}
	h.setAuthCookie(w, r, user.Token, remember)
	logger.Info("admin login", zap.String("uid", user.UID))

	custommw.Redirect(w, r, h.redirectTarget(recordedNext))
}

func (h *authHandlers) passwordLogin(r *http.Request, email, password string) (*custommw.User, error) {
	if h.accounts == nil {
		return nil, account.ErrNotConfigured
	}
	result, err := h.accounts.Login(r.Context(), email, password)
	if err != nil {
		return nil, err
	}
	return custommw.UserFromProfile(result.Profile, result.Token), nil
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
		sess.Destroy()
	}
	custommw.ClearTokenCookie(w, h.cookiePath())

	redirect := h.loginURLWithParams(map[string]string{
		"status": "logged_out",
	})
	custommw.Redirect(w, r, redirect)
}

func (h *authHandlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, account.Registration{Role: "admin"}, nil, "", http.StatusOK)
}

func (h *authHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, account.Registration{}, nil, "No se pudo enviar el formulario. Intente de nuevo.", http.StatusBadRequest)
		return
	}
	reg := account.ParseRegistration(r.PostForm)
	if errs := reg.Validate(); errs != nil {
		h.renderRegister(w, r, reg, errs, "", http.StatusUnprocessableEntity)
		return
	}
	if h.accounts == nil {
		h.renderRegister(w, r, reg, nil, "El registro no está disponible.", http.StatusServiceUnavailable)
		return
	}
	if err := h.accounts.Register(ctx, reg); err != nil {
		observability.FromContext(ctx).Warn("account registration failed", zap.Error(err))
		fields := account.BackendFieldErrors(err)
		status := http.StatusBadGateway
		message := "No se pudo crear la cuenta. Intente de nuevo más tarde."
		if fields != nil {
			status, message = http.StatusUnprocessableEntity, ""
		}
		h.renderRegister(w, r, reg, fields, message, status)
		return
	}
	observability.FromContext(ctx).Info("account registered", zap.String("email", reg.Email))
	custommw.Redirect(w, r, h.loginURLWithParams(map[string]string{"status": "registered", "email": reg.Email}))
}

func (h *authHandlers) renderRegister(w http.ResponseWriter, r *http.Request, reg account.Registration, errs map[string]string, message string, status int) {
	ctx := r.Context()
	var companies []account.Company
	if h.accounts != nil {
		var err error
		if companies, err = h.accounts.Companies(ctx); err != nil {
			observability.FromContext(ctx).Warn("list companies failed", zap.Error(err))
			if message == "" {
				message = "No se pudo cargar la lista de empresas."
			}
		}
	}
	reg.Password, reg.PasswordConfirmation = "", ""
	data := auth.NewRegisterPageData(reg, companies)
	data.Errors = errs
	data.Error = message
	data.RegisterPath = h.registerPath
	data.LoginPath = h.loginPath
	data.CSRFToken = custommw.CSRFTokenFromContext(ctx)

	component := auth.RegisterPage(data)
	if custommw.IsHTMXRequest(ctx) {
		component, status = auth.RegisterForm(data), http.StatusOK
	}
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}

type loginFormState struct {
	Email    string
	Remember bool
	Next     string
	Error    string
	Message  string
}

func (h *authHandlers) buildLoginPageData(r *http.Request, state *loginFormState) auth.LoginPageData {
	q := url.Values{}
	if r.URL != nil {
		q = r.URL.Query()
	}

	next := ""
	if state != nil && state.Next != "" {
		next = h.normalizeNext(state.Next)
	} else {
		next = h.normalizeNext(q.Get("next"))
	}

	message := ""
	if state != nil && strings.TrimSpace(state.Message) != "" {
		message = state.Message
	} else {
		message = h.messageForQuery(q)
	}

	errorText := ""
	if state != nil {
		errorText = state.Error
	}

	remember := false
	if state != nil {
		remember = state.Remember
	} else if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
		remember = sess.RememberMe()
	}

	email := ""
	if state != nil {
		email = state.Email
	} else {
		email = strings.TrimSpace(q.Get("email"))
	}

	return auth.LoginPageData{
		Email:        email,
		Message:      message,
		Error:        errorText,
		Remember:     remember,
		Next:         next,
		LoginPath:    h.loginPath,
		RegisterPath: h.registerPath,
		BasePath:     h.basePath,
		CSRFToken:    custommw.CSRFTokenFromContext(r.Context()),
	}
}

func (h *authHandlers) renderLoginPage(w http.ResponseWriter, r *http.Request, data auth.LoginPageData, status int) {
	templ.Handler(auth.LoginPage(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *authHandlers) isAuthenticated(r *http.Request) bool {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok || sess == nil {
		return false
	}
	user := sess.User()
	return user != nil && strings.TrimSpace(user.UID) != ""
}

func (h *authHandlers) errorMessageFor(err error) string {
	if err == nil {
		return "Ocurrió un error desconocido."
	}
	if errors.Is(err, account.ErrInvalidCredentials) {
		return "Correo o contraseña incorrectos."
	}
	var authErr *custommw.AuthError
	if errors.As(err, &authErr) {
		switch authErr.Reason {
		case custommw.ReasonTokenExpired:
			return "Su sesión expiró. Inicie sesión de nuevo."
		case custommw.ReasonMissingToken:
			return "Faltan las credenciales. Verifique e intente de nuevo."
		default:
			return "No se pudo verificar su identidad. Revise los datos ingresados."
		}
	}
	if errors.Is(err, custommw.ErrUnauthorized) {
		return "No se pudo verificar su identidad. Revise los datos ingresados."
	}
	return "No se pudo iniciar sesión. Intente de nuevo más tarde."
}

func (h *authHandlers) messageForQuery(q url.Values) string {
	if q == nil {
		return ""
	}
	switch q.Get("status") {
	case "logged_out":
		return "Cerró sesión correctamente."
	case "registered":
		return "Cuenta creada. Ya puede iniciar sesión."
	case "deleted":
		return "Su cuenta fue eliminada."
	}
	switch q.Get("reason") {
	case custommw.ReasonTokenExpired, "expired":
		return "Su sesión expiró. Inicie sesión de nuevo."
	case custommw.ReasonMissingToken:
		return "Debe iniciar sesión para continuar."
	case custommw.ReasonTokenInvalid:
		return "Las credenciales no son válidas. Intente de nuevo."
	default:
		return ""
	}
}

func (h *authHandlers) redirectTarget(raw string) string {
	next := h.normalizeNext(raw)
	if next != "" {
		return next
	}
	if strings.TrimSpace(h.basePath) == "" {
		return "/"
	}
	return h.basePath
}

func (h *authHandlers) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, remember bool) {
	var expires time.Time
	if remember {
		if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
			expires = sess.ExpiresAt()
		}
	}
	custommw.SetTokenCookie(w, r, token, h.cookiePath(), expires)
}

func (h *authHandlers) cookiePath() string {
	if strings.TrimSpace(h.basePath) == "" {
		return "/"
	}
	return h.basePath
}

func (h *authHandlers) loginURLWithParams(params map[string]string) string {
	parsed, err := url.Parse(h.loginPath)
	if err != nil {
		return h.loginPath
	}
	q := parsed.Query()
	for key, val := range params {
		if strings.TrimSpace(val) == "" {
			continue
		}
		q.Set(key, val)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func parseCheckbox(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

func forceLogin(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}
	flag := strings.TrimSpace(r.URL.Query().Get("force"))
	if flag == "" {
		return false
	}
	switch strings.ToLower(flag) {
	case "1", "true", "yes", "force":
		return true
	default:
		return false
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	trim := func(p string) string {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		for len(p) > 1 && strings.HasSuffix(p, "/") {
			p = strings.TrimSuffix(p, "/")
		}
		return p
	}
	return trim(a) == trim(b)
}

func (h *authHandlers) normalizeNext(raw string) string {
	sanitized := sanitizeNextTarget(h.basePath, raw)
	if sanitized == "" {
		return ""
	}

	if h.loginPath != "" {
		if samePath(pathOnly(sanitized), h.loginPath) {
			return ""
		}
	}
	return sanitized
}

func sanitizeNextTarget(basePath, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}

	pathValue := parsed.Path
	if pathValue == "" {
		pathValue = "/"
	}

	unescaped, err := url.PathUnescape(pathValue)
	if err != nil {
		return ""
	}
	if strings.Contains(unescaped, "\\") {
		return ""
	}

	cleaned := path.Clean(unescaped)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if strings.HasPrefix(cleaned, "//") {
		return ""
	}

	normalisedBase := custommw.NormaliseBasePath(basePath)
	if normalisedBase != "/" && !hasSafePrefix(cleaned, normalisedBase) {
		return ""
	}

	target := cleaned
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		target += "#" + parsed.Fragment
	}
	return target
}

func hasSafePrefix(pathValue, base string) bool {
	if base == "/" {
		return strings.HasPrefix(pathValue, "/")
	}
	if !strings.HasPrefix(pathValue, base) {
		return false
	}
	if len(pathValue) == len(base) {
		return true
	}
	return pathValue[len(base)] == '/'
}

func pathOnly(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Path
}
