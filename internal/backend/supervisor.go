package backend

import (
	"log/slog"
	"sync"
)

// State is the supervisor lifecycle state.
type State int

const (
	// StateNotStarted means no spawn was attempted, or the attempt failed.
	// A stable state — the shell runs degraded, without a backend.
	StateNotStarted State = iota
	// StateRunning means a handle is held and the child is presumed alive.
	StateRunning
	// StateTerminated means the handle was consumed and termination requested.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "not-started"
	}
}

// Status is the supervisor snapshot pushed to the UI over the bridge.
type Status struct {
	State string `json:"state"`
	PID   int    `json:"pid,omitempty"`
}

// Supervisor owns the backend child process for the lifetime of the shell.
// At most one handle exists per run; it is created by Start and consumed by
// Shutdown, never duplicated.
type Supervisor struct {
	mu      sync.Mutex
	state   State
	handle  *Handle
	console *Console
}

func NewSupervisor() *Supervisor {
	return &Supervisor{console: NewConsole()}
}

// Console returns the output capture fed by the child process.
func (s *Supervisor) Console() *Console {
	return s.console
}

// Start attempts the single spawn for this run. A failed spawn leaves the
// supervisor in NotStarted and is logged, not escalated — the shell stays
// usable without a backend. Calling Start more than once, or after
// Shutdown, does nothing.
func (s *Supervisor) Start(t Target, spec LaunchSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotStarted {
		slog.Warn("backend start ignored", "state", s.state.String())
		return
	}

	h, err := Launch(t, spec, s.console)
	if err != nil {
		slog.Warn("backend spawn failed, continuing without backend",
			"path", t.Path, "err", err)
		return
	}

	s.handle = h
	s.state = StateRunning
	slog.Info("backend started", "pid", h.PID(), "path", t.Path)
}

// Shutdown terminates the child if a handle is held and discards it.
// Idempotent: redundant calls and calls with no handle are no-ops.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.state = StateTerminated
	s.mu.Unlock()

	if h == nil {
		return
	}

	pid := h.PID()
	h.Kill()
	s.console.Close()
	slog.Info("backend terminated", "pid", pid)
}

// Status returns a snapshot of the supervisor state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{State: s.state.String()}
	if s.handle != nil {
		st.PID = s.handle.PID()
	}
	return st
}
