package config

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Defaults for the filesystem layout contract. These are part of the
// deployment contract with the packaging pipeline and the backend repo;
// changing them breaks installed applications.
const (
	DefaultInterpreter = ".venv/bin/python"
	DefaultFallback    = "python3"
	DefaultScript      = "backend/run_backend.py"
	DefaultSidecar     = "pi-backend"
)

type Config struct {
	Port        int        // window server port (loopback only)
	Dev         bool       // development mode (interpreter + sources, filesystem frontend)
	LogLevel    slog.Level // Parsed log level (debug, info, warn, error)
	ProjectDir  string     // dev: project root the layout paths are relative to
	FrontendDir string     // dev: built UI directory, relative to ProjectDir unless absolute

	// Backend endpoint — a static contract with the backend, not discovered.
	BackendHost string
	BackendPort int

	// Filesystem layout contract (see Defaults above). Overridable via a
	// deployment manifest for custom packagings.
	Interpreter string
	Fallback    string
	Script      string
	Sidecar     string
}

func Parse() *Config {
	cfg := &Config{
		Interpreter: DefaultInterpreter,
		Fallback:    DefaultFallback,
		Script:      DefaultScript,
		Sidecar:     DefaultSidecar,
	}

	var logLevel, manifest string
	flag.IntVar(&cfg.Port, "port", 8420, "Window server port (binds 127.0.0.1)")
	flag.BoolVar(&cfg.Dev, "dev", false, "Development mode (run backend from project sources)")
	flag.StringVar(&cfg.ProjectDir, "project-dir", ".", "Project root for dev-mode backend paths")
	flag.StringVar(&cfg.FrontendDir, "frontend-dir", "dist", "Dev-mode frontend directory (relative to project-dir)")
	flag.StringVar(&cfg.BackendHost, "backend-host", "127.0.0.1", "Backend endpoint host")
	flag.IntVar(&cfg.BackendPort, "backend-port", 8787, "Backend endpoint port")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&manifest, "manifest", "", "Path to deployment manifest (YAML)")
	flag.Parse()

	// Env vars override flags (if set)
	if v := os.Getenv("PI_DESKTOP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("PI_DESKTOP_DEV"); v == "1" || v == "true" {
		cfg.Dev = true
	}
	if v := os.Getenv("PI_DESKTOP_PROJECT_DIR"); v != "" {
		cfg.ProjectDir = v
	}
	if v := os.Getenv("PI_DESKTOP_FRONTEND_DIR"); v != "" {
		cfg.FrontendDir = v
	}
	if v := os.Getenv("PI_UI_HOST"); v != "" {
		cfg.BackendHost = v
	}
	if v := os.Getenv("PI_UI_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.BackendPort = p
		}
	}
	if v := os.Getenv("PI_DESKTOP_LOG_LEVEL"); v != "" {
		logLevel = v
	}
	if v := os.Getenv("PI_DESKTOP_MANIFEST"); v != "" {
		manifest = v
	}

	cfg.LogLevel = parseLogLevel(logLevel)

	if manifest != "" {
		m, err := LoadManifest(manifest)
		if err != nil {
			slog.Warn("deployment manifest ignored", "path", manifest, "err", err)
		} else {
			m.apply(cfg)
		}
	}

	return cfg
}

// Endpoint returns the backend connection string published to the UI.
func (c *Config) Endpoint() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(c.BackendHost, strconv.Itoa(c.BackendPort)))
}

// FrontendPath returns the dev-mode frontend directory anchored to the
// project root, so dev startup does not depend on the working directory.
func (c *Config) FrontendPath() string {
	if filepath.IsAbs(c.FrontendDir) {
		return c.FrontendDir
	}
	return filepath.Join(c.ProjectDir, c.FrontendDir)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
