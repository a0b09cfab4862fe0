package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"dubbing-backend/internal/language"
	"dubbing-backend/internal/service"

	"github.com/gorilla/mux"
)

// LibraryHandler serves the dubbed-video library and transcripts.
type LibraryHandler struct {
	Library *service.LibraryService
	Log     *slog.Logger
}

// List always answers 200; a failed refresh is reported in the body's error field.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	lang, ok := targetLang(w, r, sess.TargetLang)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.Library.List(r.Context(), sess.UserID, lang))
}

func (h *LibraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	lang, ok := targetLang(w, r, sess.TargetLang)
	if !ok {
		return
	}

	entry, err := h.Library.Entry(r.Context(), lang, mux.Vars(r)["dubbingID"])
	if errors.Is(err, service.ErrEntryNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger().Warn("library entry lookup failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *LibraryHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	lang, ok := targetLang(w, r, sess.TargetLang)
	if !ok {
		return
	}

	tr, err := h.Library.Transcript(r.Context(), lang, mux.Vars(r)["dubbingID"])
	if err != nil {
		h.logger().Warn("transcript fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tr)
}

func (h *LibraryHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// targetLang reads ?target_lang=, falling back to the session's language.
func targetLang(w http.ResponseWriter, r *http.Request, fallback string) (string, bool) {
	raw := r.URL.Query().Get("target_lang")
	if raw == "" {
		return fallback, true
	}
	lang, err := language.Validate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return lang, true
}
