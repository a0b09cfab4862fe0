package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadsServesFilesOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("video"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	srv := http.StripPrefix("/uploads/", Uploads(dir))

	tests := []struct {
		path string
		want int
	}{
		{"/uploads/clip.mp4", http.StatusOK},
		{"/uploads/", http.StatusNotFound},
		{"/uploads/nested", http.StatusNotFound},
		{"/uploads/nested/", http.StatusNotFound},
		{"/uploads/missing.mp4", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "video", rec.Body.String())
			}
		})
	}
}
