package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"dubbing-backend/internal/clip"
	"dubbing-backend/internal/metrics"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/requests"
	"dubbing-backend/internal/service"
	"dubbing-backend/internal/storage"
	"dubbing-backend/internal/validation"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 32 << 20

// EditorHandler serves video submission and the clip editor.
type EditorHandler struct {
	Drafts  *service.DraftService
	Dubs    *service.DubService
	Storage storage.Storage
	Log     *slog.Logger
}

// draftView is a draft plus the values the clip editor displays.
type draftView struct {
	*models.Draft
	MaxLengthReached bool   `json:"max_length_reached"`
	StartLabel       string `json:"start_label"`
	EndLabel         string `json:"end_label"`
	CurrentLabel     string `json:"current_label"`
	DurationLabel    string `json:"duration_label"`
}

func viewDraft(d *models.Draft) draftView {
	return draftView{
		Draft:            d,
		MaxLengthReached: d.Selection.MaxLengthReached(),
		StartLabel:       clip.FormatTime(d.Selection.Start),
		EndLabel:         clip.FormatTime(d.Selection.End),
		CurrentLabel:     clip.FormatTime(d.Selection.Current),
		DurationLabel:    clip.FormatTime(d.Selection.Duration),
	}
}

func (h *EditorHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	var req service.DraftInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	draft, err := h.Drafts.Create(r.Context(), sess.UserID, req)
	if err != nil {
		h.writeServiceError(w, "create draft", err)
		return
	}

	writeJSON(w, http.StatusCreated, viewDraft(draft))
}

func (h *EditorHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	draft, err := h.Drafts.Get(r.Context(), id, sess.UserID)
	if err != nil {
		h.writeServiceError(w, "get draft", err)
		return
	}

	writeJSON(w, http.StatusOK, viewDraft(draft))
}

// ApplyEvents feeds handle moves and player events into the clip reducer.
func (h *EditorHandler) ApplyEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var body struct {
		Events []clip.Event `json:"events"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	draft, err := h.Drafts.Apply(r.Context(), id, sess.UserID, body.Events)
	if err != nil {
		h.writeServiceError(w, "apply events", err)
		return
	}

	writeJSON(w, http.StatusOK, viewDraft(draft))
}

func (h *EditorHandler) RequestDub(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	res, err := h.Dubs.RequestDub(r.Context(), sess, id)
	if err != nil {
		h.writeServiceError(w, "request dub", err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *EditorHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	if err := h.Drafts.Delete(r.Context(), id, sess.UserID); err != nil {
		h.writeServiceError(w, "delete draft", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
	})
}

// UploadFile stores a source video and returns the URL the dubbing backend
// will fetch it from.
func (h *EditorHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := session(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxFileSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	if err := validation.ValidateUpload(fileHeader); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fileURL, err := h.Storage.Upload(r.Context(), file, fileHeader.Filename, validation.ContentType(fileHeader))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		h.logger().Error("upload failed", "filename", fileHeader.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "File save failed")
		return
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"file_url": fileURL,
		"filename": fileHeader.Filename,
	})
}

// writeServiceError maps service sentinels to status codes. Anything else
// is an upstream or storage failure.
func (h *EditorHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDraftNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, requests.ErrSuperseded), errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger().Error(op+" failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (h *EditorHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func draftID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid draft id")
		return uuid.Nil, false
	}
	return id, true
}
