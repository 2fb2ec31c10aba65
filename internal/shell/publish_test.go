package shell

import (
	"bytes"
	"testing"
)

func TestInjectEndpoint(t *testing.T) {
	t.Parallel()

	page := []byte("<html><head><title>pi</title></head><body></body></html>")
	out := InjectEndpoint(page, "http://127.0.0.1:8787")

	want := []byte(`<script>window.__PI_API_BASE = "http://127.0.0.1:8787";</script></head>`)
	if !bytes.Contains(out, want) {
		t.Errorf("injected page = %q, want it to contain %q", out, want)
	}
	// The endpoint script must come before the page's own head end so UI
	// code sees the global during its own script execution.
	if bytes.Index(out, []byte("__PI_API_BASE")) > bytes.Index(out, []byte("</head>")) {
		t.Error("endpoint injected after </head>")
	}
}

func TestInjectEndpointNoMarker(t *testing.T) {
	t.Parallel()

	// No </head> — publish is tolerated silently, page served unchanged
	page := []byte("<html><body>bare</body></html>")
	out := InjectEndpoint(page, "http://127.0.0.1:8787")

	if !bytes.Equal(out, page) {
		t.Errorf("page without marker modified: %q", out)
	}
}
