package shell

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/http"
)

// InjectEndpoint splices the backend endpoint into the page so UI code can
// read window.__PI_API_BASE before any of its own scripts run. The endpoint
// is a static contract — the same value is published whether or not a
// backend process actually started. A page without a </head> marker is
// returned unchanged; the publish is best-effort and never blocks startup.
func InjectEndpoint(page []byte, endpoint string) []byte {
	i := bytes.Index(page, []byte("</head>"))
	if i < 0 {
		return page
	}

	tag := fmt.Appendf(nil, "<script>window.__PI_API_BASE = %q;</script>", endpoint)

	out := make([]byte, 0, len(page)+len(tag))
	out = append(out, page[:i]...)
	out = append(out, tag...)
	out = append(out, page[i:]...)
	return out
}

// serveIndex serves index.html with the endpoint published into it.
func serveIndex(w http.ResponseWriter, r *http.Request, fsys fs.FS, endpoint string) {
	page, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(InjectEndpoint(page, endpoint))
}
