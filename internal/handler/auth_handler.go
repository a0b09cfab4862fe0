package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"dubbing-backend/internal/auth"
	"dubbing-backend/internal/service"
)

const (
	stateCookie = "dub_oauth_state"
	stateTTL    = 10 * time.Minute
)

// AuthHandler runs OAuth sign-in and hands out session tokens.
type AuthHandler struct {
	Provider     auth.Provider // nil when OAuth is not configured
	Sessions     *service.SessionService
	CookieSecure bool
	// AfterSignIn is where the browser lands once the session cookie is set.
	AfterSignIn string
	Log         *slog.Logger
}

// SignIn redirects to the provider's consent page.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		writeError(w, http.StatusServiceUnavailable, auth.ErrOAuthDisabled.Error())
		return
	}

	state, err := auth.NewState()
	if err != nil {
		h.logger().Error("generate oauth state", "error", err)
		writeError(w, http.StatusInternalServerError, "could not start sign-in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the code exchange, signs the user in and sets the session cookie.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		writeError(w, http.StatusServiceUnavailable, auth.ErrOAuthDisabled.Error())
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		writeError(w, http.StatusUnauthorized, "sign-in denied: "+e)
		return
	}

	c, err := r.Cookie(stateCookie)
	if err != nil || q.Get("state") == "" ||
		subtle.ConstantTimeCompare([]byte(c.Value), []byte(q.Get("state"))) != 1 {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/api/auth", MaxAge: -1})

	identity, err := h.Provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.logger().Warn("oauth exchange failed", "error", err)
		writeError(w, http.StatusUnauthorized, "sign-in failed")
		return
	}

	token, sess, err := h.Sessions.SignIn(r.Context(), *identity)
	if err != nil {
		h.logger().Error("sign in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}
	h.logger().Info("user signed in", "user_id", sess.UserID, "target_lang", sess.TargetLang)

	auth.SetCookie(w, token, sess.ExpiresAt, h.CookieSecure)
	if h.AfterSignIn != "" {
		http.Redirect(w, r, h.AfterSignIn, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Token: token, ExpiresAt: sess.ExpiresAt})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w, h.CookieSecure)
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "signed_out",
	})
}

// Session returns the caller's session. Mounted behind RequireSession.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, ExpiresAt: sess.ExpiresAt})
}

func (h *AuthHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}
