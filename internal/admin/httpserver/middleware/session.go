package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/observability"
	appsession "github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/session"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "admin.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
	Destroy(http.ResponseWriter)
}

// Session attaches the decoded session to the request context. Changes are
// written back before the first byte of the response.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			sess, err := store.Load(r)
			switch {
			case errors.Is(err, appsession.ErrExpired):
				logger.Info("session expired: resetting")
				store.Destroy(w)
				sess = store.New()
			case err != nil || sess == nil:
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			// Saved on every response so LastActive slides the idle window.
			sw := &sessionWriter{ResponseWriter: w, save: func() {
				if err := store.Save(w, sess); err != nil {
					logger.Error("session save failed", zap.Error(err))
				}
			}}

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.commit()
		})
	}
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}

// sessionWriter saves the session right before headers are sent, since
// Set-Cookie cannot be added once the body starts.
type sessionWriter struct {
	http.ResponseWriter
	save      func()
	committed bool
}

func (w *sessionWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true
	w.save()
}

func (w *sessionWriter) WriteHeader(status int) {
	w.commit()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
