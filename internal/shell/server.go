// Package shell is the host surface of the application: a loopback window
// server that delivers the UI, publishes the backend endpoint into it, and
// exposes the bridge the UI talks to the shell over.
package shell

import (
	"compress/gzip"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
)

// Options configures the window server.
type Options struct {
	Frontend fs.FS        // built UI (embedded, or dist/ on disk in dev mode)
	Endpoint string       // backend connection string published to the page
	Bridge   http.Handler // mounted at /ws; nil disables the bridge
}

// Handler builds the window server: UI with SPA fallback, endpoint
// publication, gzip, health probe, and the bridge mount.
func Handler(opts Options) http.Handler {
	mux := http.NewServeMux()
	if opts.Bridge != nil {
		mux.Handle("/ws", opts.Bridge)
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/", gzipMiddleware(uiHandler(opts.Frontend, opts.Endpoint)))
	return mux
}

// uiHandler serves static files from the given FS. index.html — requested
// directly or as the SPA fallback for unknown paths — is served through
// serveIndex so the endpoint gets published into it.
func uiHandler(fsys fs.FS, endpoint string) http.Handler {
	fileServer := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if path != "index.html" {
			if f, err := fsys.Open(path); err == nil {
				f.Close()
				fileServer.ServeHTTP(w, r)
				return
			}
			// File not found — fall back to index.html for client routing
		}

		serveIndex(w, r, fsys, endpoint)
	})
}

// gzipPool reuses gzip.Writer instances (~256KB internal state each).
var gzipPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return w
	},
}

// gzipMiddleware compresses responses on the fly for clients that accept it.
func gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		// Skip compression for already-compressed asset types
		switch filepath.Ext(r.URL.Path) {
		case ".png", ".jpg", ".jpeg", ".gif", ".ico", ".woff", ".woff2", ".br", ".gz":
			next.ServeHTTP(w, r)
			return
		}

		gz := gzipPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			gz.Close()
			gzipPool.Put(gz)
		}()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")

		next.ServeHTTP(&gzipResponseWriter{Writer: gz, ResponseWriter: w}, r)
	})
}

type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}
