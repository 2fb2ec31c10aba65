package backend

import (
	"strings"
	"testing"
)

func TestConsoleBufferAndFanOut(t *testing.T) {
	t.Parallel()

	c := NewConsole()

	var got []string
	c.Attach("w1", func(data string) {
		got = append(got, data)
	})

	c.Write([]byte("line one\n"))
	c.Write([]byte("line two\n"))

	if c.Buffer() != "line one\nline two\n" {
		t.Errorf("Buffer = %q", c.Buffer())
	}
	if len(got) != 2 || got[0] != "line one\n" || got[1] != "line two\n" {
		t.Errorf("writer received %v", got)
	}
}

func TestConsoleAttachLeavesNoGap(t *testing.T) {
	t.Parallel()

	c := NewConsole()
	c.Write([]byte("early\n"))

	var streamed []string
	replay := c.Attach("w1", func(data string) {
		streamed = append(streamed, data)
	})

	c.Write([]byte("late\n"))

	// Every byte lands exactly once: pre-attach output in the replay,
	// post-attach output on the stream.
	if replay != "early\n" {
		t.Errorf("replay = %q, want pre-attach output only", replay)
	}
	if len(streamed) != 1 || streamed[0] != "late\n" {
		t.Errorf("streamed = %v, want post-attach output only", streamed)
	}
}

func TestConsoleRemoveWriter(t *testing.T) {
	t.Parallel()

	c := NewConsole()

	calls := 0
	c.Attach("w1", func(string) { calls++ })

	c.Write([]byte("a"))
	c.RemoveWriter("w1")
	c.Write([]byte("b"))

	if calls != 1 {
		t.Errorf("calls = %d, want 1 after removal", calls)
	}
	if c.Buffer() != "ab" {
		t.Errorf("Buffer = %q, capture continues without writers", c.Buffer())
	}
}

func TestConsoleFanOutReleasesLock(t *testing.T) {
	t.Parallel()

	c := NewConsole()

	// A writer that reads the console back would deadlock if fan-out still
	// held the mutex.
	var seen string
	c.Attach("w1", func(string) {
		seen = c.Buffer()
	})

	c.Write([]byte("ping\n"))

	if seen != "ping\n" {
		t.Errorf("writer saw buffer %q", seen)
	}
}

func TestConsoleTrimsBuffer(t *testing.T) {
	t.Parallel()

	c := NewConsole()

	chunk := strings.Repeat("x", 40000)
	c.Write([]byte(chunk))
	c.Write([]byte(chunk)) // 80000 > 64K — trimmed to the newest 32K

	if got := len(c.Buffer()); got != 32768 {
		t.Errorf("buffer length = %d, want 32768 after trim", got)
	}
}

func TestConsoleClosedDiscards(t *testing.T) {
	t.Parallel()

	c := NewConsole()
	c.Write([]byte("before"))
	c.Close()

	replay := c.Attach("late", func(string) {
		t.Error("writer attached after close must not fire")
	})
	if replay != "before" {
		t.Errorf("replay after close = %q, buffer should survive", replay)
	}
	if n, err := c.Write([]byte("after")); err != nil || n != 5 {
		t.Errorf("Write after close = (%d, %v), want silent accept", n, err)
	}
}
