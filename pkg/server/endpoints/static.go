package endpoints

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
)

//go:embed static/css
var staticFiles embed.FS

// RegisterStaticFiles serves the status page stylesheet from the binary
func RegisterStaticFiles(srv *server.Server) {
	cssFS, _ := fs.Sub(staticFiles, "static/css")
	files := http.StripPrefix("/css/", http.FileServer(http.FS(cssFS)))
	srv.Router.PathPrefix("/css/").Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	}))

	// No icon; answer quickly instead of falling through to the 404 handler
	srv.Router.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
