package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchSourcesNotifiesOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ch := make(chan string, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := WatchSources(ctx, dir, func(name string) { ch <- name }); err != nil {
		t.Fatal(err)
	}

	// A non-source file first: it must not produce a notification, so the
	// first thing on the channel is the .py change below.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run_backend.py"), []byte("print()\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-ch:
		if name != "run_backend.py" {
			t.Errorf("notified for %q, want run_backend.py", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for source change notification")
	}
}

func TestWatchSourcesMissingDir(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := WatchSources(ctx, filepath.Join(t.TempDir(), "nope"), nil)
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatchSourcesDebounces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ch := make(chan string, 32)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := WatchSources(ctx, dir, func(name string) { ch <- name }); err != nil {
		t.Fatal(err)
	}

	// Burst of writes to the same file within the debounce window
	path := filepath.Join(dir, "api.py")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("pass\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for notification")
	}

	// The burst coalesces — no flood of further notifications
	select {
	case name := <-ch:
		t.Errorf("unexpected extra notification for %q", name)
	case <-time.After(500 * time.Millisecond):
	}
}
