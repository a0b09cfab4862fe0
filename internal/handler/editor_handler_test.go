package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dubbing-backend/internal/auth"
	"dubbing-backend/internal/clip"
	"dubbing-backend/internal/draftstore"
	"dubbing-backend/internal/requests"
	"dubbing-backend/internal/service"
	"dubbing-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditorHandler(t *testing.T, backend http.HandlerFunc) *EditorHandler {
	t.Helper()
	drafts := service.NewDraftService(draftstore.NewMemory(time.Hour))
	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8083")
	require.NoError(t, err)
	if backend == nil {
		backend = func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{}`)) }
	}
	return &EditorHandler{
		Drafts: drafts,
		Dubs: &service.DubService{
			Drafts:  drafts,
			Client:  fakeBackend(t, backend),
			Tracker: requests.NewMemory(),
		},
		Storage: store,
	}
}

func createDraft(t *testing.T, h *EditorHandler, duration float64) draftView {
	t.Helper()
	rec := httptest.NewRecorder()
	h.CreateDraft(rec, newRequest(http.MethodPost, "/api/v1/drafts",
		map[string]interface{}{"source_url": "https://youtu.be/x", "duration_sec": duration}, nil, &testUser))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view draftView
	decode(t, rec, &view)
	return view
}

func TestCreateDraftHandler(t *testing.T) {
	h := newEditorHandler(t, nil)

	view := createDraft(t, h, 120)
	assert.NotEqual(t, uuid.Nil, view.DraftID)
	assert.Equal(t, 0.0, view.Selection.Start)
	assert.Equal(t, 120.0, view.Selection.End)
	assert.Equal(t, "2:00", view.EndLabel)

	t.Run("no session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.CreateDraft(rec, newRequest(http.MethodPost, "/api/v1/drafts", map[string]interface{}{}, nil, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("both sources", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.CreateDraft(rec, newRequest(http.MethodPost, "/api/v1/drafts", map[string]interface{}{
			"source_url": "https://youtu.be/x", "upload_url": "https://cdn/x.mp4", "duration_sec": 10,
		}, nil, &testUser))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.CreateDraft(rec, newRequest(http.MethodPost, "/api/v1/drafts", map[string]interface{}{"video": "x"}, nil, &testUser))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestApplyEventsHandler(t *testing.T) {
	h := newEditorHandler(t, nil)
	view := createDraft(t, h, 120)
	vars := map[string]string{"id": view.DraftID.String()}

	rec := httptest.NewRecorder()
	h.ApplyEvents(rec, newRequest(http.MethodPost, "/api/v1/drafts/x/events", map[string]interface{}{
		"events": []clip.Event{{Type: clip.EventDragStart, Value: 1.3}},
	}, vars, &testUser))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got draftView
	decode(t, rec, &got)
	assert.Equal(t, 119.0, got.Selection.Start)
	assert.Equal(t, 2, got.Version)
	assert.False(t, got.MaxLengthReached)
}

func TestGetDraftHandlerErrors(t *testing.T) {
	h := newEditorHandler(t, nil)
	view := createDraft(t, h, 30)

	tests := []struct {
		name string
		id   string
		user string
		want int
	}{
		{"ok", view.DraftID.String(), "user-1", http.StatusOK},
		{"bad id", "not-a-uuid", "user-1", http.StatusBadRequest},
		{"missing", uuid.NewString(), "user-1", http.StatusNotFound},
		{"other user", view.DraftID.String(), "user-2", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := testUser
			sess.UserID = tt.user
			rec := httptest.NewRecorder()
			h.GetDraft(rec, newRequest(http.MethodGet, "/api/v1/drafts/x", nil, map[string]string{"id": tt.id}, &sess))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRequestDubHandler(t *testing.T) {
	var gotQuery string
	h := newEditorHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"status":"queued"}`))
	})
	view := createDraft(t, h, 120)
	vars := map[string]string{"id": view.DraftID.String()}

	rec := httptest.NewRecorder()
	h.ApplyEvents(rec, newRequest(http.MethodPost, "/api/v1/drafts/x/events", map[string]interface{}{
		"events": []clip.Event{{Type: clip.EventMoveEnd, Value: 35}, {Type: clip.EventMoveStart, Value: 5}},
	}, vars, &testUser))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.RequestDub(rec, newRequest(http.MethodPost, "/api/v1/drafts/x/dub", nil, vars, &testUser))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "source_url=https%3A%2F%2Fyoutu.be%2Fx&target_lang=es&start_time=5&end_time=35", gotQuery)
	assert.Contains(t, rec.Body.String(), `"queued"`)
}

func TestRequestDubHandlerUpstreamFailure(t *testing.T) {
	h := newEditorHandler(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	view := createDraft(t, h, 20)
	vars := map[string]string{"id": view.DraftID.String()}

	rec := httptest.NewRecorder()
	h.RequestDub(rec, newRequest(http.MethodPost, "/api/v1/drafts/x/dub", nil, vars, &testUser))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = httptest.NewRecorder()
	h.GetDraft(rec, newRequest(http.MethodGet, "/api/v1/drafts/x", nil, vars, &testUser))
	var got draftView
	decode(t, rec, &got)
	assert.Equal(t, "failed", got.Status)
	assert.Contains(t, got.LastError, "503")
}

func TestDeleteDraftHandler(t *testing.T) {
	h := newEditorHandler(t, nil)
	view := createDraft(t, h, 30)
	vars := map[string]string{"id": view.DraftID.String()}

	rec := httptest.NewRecorder()
	h.DeleteDraft(rec, newRequest(http.MethodDelete, "/api/v1/drafts/x", nil, vars, &testUser))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.DeleteDraft(rec, newRequest(http.MethodDelete, "/api/v1/drafts/x", nil, vars, &testUser))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write([]byte(content))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(auth.WithSession(req.Context(), testUser))
}

func TestUploadFileHandler(t *testing.T) {
	h := newEditorHandler(t, nil)

	rec := httptest.NewRecorder()
	h.UploadFile(rec, uploadRequest(t, "holiday.mp4", "fake video"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got map[string]string
	decode(t, rec, &got)
	assert.True(t, strings.HasPrefix(got["file_url"], "http://localhost:8083/uploads/"))
	assert.Equal(t, "holiday.mp4", got["filename"])

	rec = httptest.NewRecorder()
	h.UploadFile(rec, uploadRequest(t, "notes.txt", "text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.UploadFile(rec, uploadRequest(t, "empty.mp4", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
