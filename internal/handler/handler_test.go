package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dubbing-backend/internal/auth"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/upstream"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

var testUser = models.Session{
	UserID:     "user-1",
	Name:       "Ada",
	Email:      "ada@example.com",
	TargetLang: "es",
}

// newRequest builds a request as the router would hand it over: session on
// the context and path variables set.
func newRequest(method, target string, body interface{}, vars map[string]string, sess *models.Session) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	if sess != nil {
		req = req.WithContext(auth.WithSession(req.Context(), *sess))
	}
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

// fakeBackend starts a dubbing backend stand-in and returns a client for it.
func fakeBackend(t *testing.T, h http.HandlerFunc) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return upstream.NewClient(srv.URL, 2*time.Second)
}

func mustField(t *testing.T, rec *httptest.ResponseRecorder, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	decode(t, rec, &fields)
	v, ok := fields[name]
	require.True(t, ok, "missing field %q", name)
	return v
}
