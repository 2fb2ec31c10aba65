package backend

import (
	"os"
	"path/filepath"
)

// Mode selects how the backend executable is located.
type Mode int

const (
	// ModeDev runs the backend from project sources through an interpreter.
	ModeDev Mode = iota
	// ModePackaged runs the self-contained sidecar binary shipped next to
	// the shell executable.
	ModePackaged
)

// Layout is the filesystem contract between the shell and the packaging
// pipeline. Interpreter and Script are relative to ProjectDir; Sidecar is a
// bare filename looked up in ExeDir. These paths must stay stable across
// releases.
type Layout struct {
	ProjectDir  string // dev: project root holding the venv and backend sources
	ExeDir      string // packaged: directory of the running shell executable
	Interpreter string // dev: project-local interpreter, preferred when present
	Fallback    string // dev: PATH interpreter used when Interpreter is absent
	Script      string // dev: backend entry script, passed as the only argument
	Sidecar     string // packaged: sidecar binary name
}

// Target describes what the launcher should execute: an executable path plus
// an optional argument list. Immutable once resolved.
type Target struct {
	Path string
	Args []string
}

// Resolve picks the backend target for the given mode. Resolution never
// fails: the returned path may not exist on disk — the launcher discovers
// that when the spawn is attempted.
func Resolve(mode Mode, l Layout) Target {
	if mode == ModeDev {
		py := filepath.Join(l.ProjectDir, l.Interpreter)
		if _, err := os.Stat(py); err != nil {
			py = l.Fallback
		}
		return Target{Path: py, Args: []string{filepath.Join(l.ProjectDir, l.Script)}}
	}

	return Target{Path: filepath.Join(l.ExeDir, l.Sidecar)}
}

// ExecutableDir returns the directory holding the running binary. Falls back
// to the working directory when the OS cannot report the executable path.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
