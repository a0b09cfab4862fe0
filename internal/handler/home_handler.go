package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"dubbing-backend/internal/auth"
	"dubbing-backend/internal/language"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/service"
)

// Home view tabs, in display order. The first is the default.
var homeTabs = []string{"watch", "create", "learn"}

// HomeHandler serves the home view state and the language preference.
type HomeHandler struct {
	Preferences  *service.PreferenceService
	CookieSecure bool
	Log          *slog.Logger
}

type homeView struct {
	Session    models.Session  `json:"session"`
	Tab        string          `json:"tab"`
	Tabs       []string        `json:"tabs"`
	TargetLang string          `json:"target_lang"`
	Language   language.Option `json:"language"`
}

// Home reports the active tab and the session's target language. Unknown
// tabs fall back to the default.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	tab := homeTabs[0]
	for _, t := range homeTabs {
		if r.URL.Query().Get("tab") == t {
			tab = t
		}
	}

	opt, _ := language.Lookup(sess.TargetLang)
	writeJSON(w, http.StatusOK, homeView{
		Session:    sess,
		Tab:        tab,
		Tabs:       homeTabs,
		TargetLang: sess.TargetLang,
		Language:   opt,
	})
}

func (h *HomeHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages": language.Options(),
	})
}

// SetLanguage changes the session's target language. The response carries
// the new session and token whether or not the change could be persisted.
func (h *HomeHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	var body struct {
		TargetLang string `json:"target_lang"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	token, next, err := h.Preferences.Update(r.Context(), sess, body.TargetLang)
	if errors.Is(err, language.ErrInvalidLanguage) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger().Error("update target language failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not update session")
		return
	}

	auth.SetCookie(w, token, next.ExpiresAt, h.CookieSecure)
	writeJSON(w, http.StatusOK, sessionResponse{Session: next, Token: token, ExpiresAt: next.ExpiresAt})
}

func (h *HomeHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

type sessionResponse struct {
	Session   models.Session `json:"session"`
	Token     string         `json:"token,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`
}
