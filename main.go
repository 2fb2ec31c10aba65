package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pi-infra/pi-desktop/internal/backend"
	"github.com/pi-infra/pi-desktop/internal/bridge"
	"github.com/pi-infra/pi-desktop/internal/config"
	"github.com/pi-infra/pi-desktop/internal/shell"
)

// version is set at build time via -ldflags="-X main.version=..."
var version = "0.1.0"

func main() {
	cfg := config.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	slog.Info("starting pi-desktop",
		"version", version,
		"port", cfg.Port,
		"dev", cfg.Dev,
		"endpoint", cfg.Endpoint(),
		"logLevel", cfg.LogLevel,
	)

	// Resolve the backend target once, up front. Resolution always yields a
	// target; whether it actually exists is the launcher's problem.
	mode := backend.ModePackaged
	layout := backend.Layout{
		ProjectDir:  cfg.ProjectDir,
		Interpreter: cfg.Interpreter,
		Fallback:    cfg.Fallback,
		Script:      cfg.Script,
		Sidecar:     cfg.Sidecar,
	}
	if cfg.Dev {
		mode = backend.ModeDev
	} else {
		layout.ExeDir = backend.ExecutableDir()
	}
	target := backend.Resolve(mode, layout)

	// Frontend. Resolved before the spawn so no exit path past this point
	// can leave a child behind.
	var frontendFS fs.FS
	if cfg.Dev {
		distPath := cfg.FrontendPath()
		slog.Info("dev mode: serving frontend from filesystem", "path", distPath)
		frontendFS = os.DirFS(distPath)
	} else {
		sub, err := fs.Sub(staticFiles, "dist")
		if err != nil {
			slog.Error("embed frontend", "err", err)
			os.Exit(1)
		}
		frontendFS = sub
	}

	// Single spawn attempt. On failure the shell keeps running without a
	// backend; the UI learns the state over the bridge.
	sup := backend.NewSupervisor()
	sup.Start(target, backend.LaunchSpec{
		Host: cfg.BackendHost,
		Port: cfg.BackendPort,
		PTY:  cfg.Dev,
	})
	defer sup.Shutdown()

	// Bridge between the served UI and the shell
	br := bridge.NewServer()
	shell.RegisterBridge(br, sup, cfg.Endpoint())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dev mode: tell the UI when backend sources change under it.
	// Restarting is left to the developer.
	if cfg.Dev {
		sourceDir := filepath.Join(cfg.ProjectDir, filepath.Dir(cfg.Script))
		if err := backend.WatchSources(ctx, sourceDir, func(name string) {
			br.Broadcast("backend-stale", name)
		}); err != nil {
			slog.Warn("backend source watcher failed to start", "err", err)
		}
	}

	// Window server — loopback only; this is a desktop surface, not a web service.
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: shell.Handler(shell.Options{
			Frontend: frontendFS,
			Endpoint: cfg.Endpoint(),
			Bridge:   br,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run until the host is told to quit or the server fails
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if code := serveWindow(srv, sup, quit); code != 0 {
		os.Exit(code)
	}
}

// serveWindow runs the window server until a quit signal arrives or the
// server fails, then tears the backend child down. Teardown runs on both
// paths — a failed listen (say, the port is held by a second instance) must
// not leave the child running past host exit. Returns the process exit code.
func serveWindow(srv *http.Server, sup *backend.Supervisor, quit <-chan os.Signal) int {
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("window server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	code := 0
	select {
	case <-quit:
		slog.Info("shutting down")
	case err := <-serverErr:
		slog.Error("window server", "err", err)
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)

	// The child must not outlive the shell. The deferred call in main covers
	// earlier exits; redundant shutdowns are no-ops.
	sup.Shutdown()
	return code
}
