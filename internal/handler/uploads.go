package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Uploads serves files from dir. Directories are never listed: any path that
// names a directory, the root included, gets a 404.
func Uploads(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || strings.HasSuffix(name, "/") {
			http.NotFound(w, r)
			return
		}
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+name))))
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
