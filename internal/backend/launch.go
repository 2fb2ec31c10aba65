package backend

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	"github.com/creack/pty"
)

// LaunchSpec carries what the launcher needs beyond the target itself.
// Host and Port are exported to the child as PI_UI_HOST/PI_UI_PORT so the
// backend listens where the published endpoint points.
type LaunchSpec struct {
	Host string
	Port int
	PTY  bool // dev mode: run under a pty for line-buffered interpreter output
}

// Handle is an exclusively-owned reference to the running backend child.
// Held by the Supervisor for the lifetime of the shell; never shared.
type Handle struct {
	cmd *exec.Cmd
	out io.ReadCloser // pty master in dev mode, nil otherwise
}

// PID returns the OS process ID of the child.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Kill requests termination of the child. Fire-and-forget: the exit status
// is not collected here, and killing an already-exited child is a no-op.
func (h *Handle) Kill() {
	if h.out != nil {
		h.out.Close()
	}
	// Returns os.ErrProcessDone when the child already exited on its own.
	_ = h.cmd.Process.Kill()
}

// Launch spawns the target as a child process, exactly once. A nil handle
// with an error means the spawn failed; callers treat that as "no backend"
// and keep the shell running, not as a fatal condition.
func Launch(t Target, spec LaunchSpec, console *Console) (*Handle, error) {
	cmd := exec.Command(t.Path, t.Args...)
	cmd.Env = append(os.Environ(),
		"PI_UI_HOST="+spec.Host,
		"PI_UI_PORT="+strconv.Itoa(spec.Port),
	)

	h := &Handle{cmd: cmd}

	if spec.PTY {
		f, err := pty.Start(cmd)
		if err != nil {
			return nil, err
		}
		h.out = f
		go func() {
			// Read returns once the child exits and the pty closes.
			io.Copy(console, f)
		}()
	} else {
		cmd.Stdout = console
		cmd.Stderr = console
		if err := cmd.Start(); err != nil {
			return nil, err
		}
	}

	// Reap the child when it exits so a self-terminating backend doesn't
	// linger as a zombie while the shell keeps running.
	go func() {
		err := cmd.Wait()
		slog.Debug("backend process exited", "path", t.Path, "err", err)
	}()

	return h, nil
}
