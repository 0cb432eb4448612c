package api

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
	"happiness.app/happiness-creator/internal/auth"
)

const (
	tokenCookieName = "token"
	sessionName     = "happiness"
	accessCodeKey   = "access_code"

	flashSuccess = "success"
	flashWarning = "warning"
	flashError   = "error"
)

type contextKey string

const sessionContextKey contextKey = "session"

func newCookieStore(key string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionMiddleware attaches the identity carried by the token cookie, if any.
// Invalid tokens and tokens for unknown users are ignored.
func (h *APIHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := auth.ValidateJWT(cookie.Value)
		if err != nil {
			log.WithError(err).Debug("Ignoring invalid session token")
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.userService.GetUser(session.UserID)
		if err != nil {
			log.Printf("Error in SessionMiddleware for user %s: %v", session.UserID, err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin sends anonymous visitors to the login page.
func (h *APIHandler) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r) == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) *auth.Session {
	session, _ := r.Context().Value(sessionContextKey).(*auth.Session)
	return session
}

func (h *APIHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *APIHandler) accessCode(r *http.Request) string {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return ""
	}
	code, _ := sess.Values[accessCodeKey].(string)
	return code
}

// flash queues a message for the next rendered page.
func (h *APIHandler) flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	sess, _ := h.sessions.Get(r, sessionName)
	sess.AddFlash(message, kind)
	if err := sess.Save(r, w); err != nil {
		log.WithError(err).Warn("Failed to save flash message")
	}
}

func (h *APIHandler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	h.flash(w, r, kind, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
