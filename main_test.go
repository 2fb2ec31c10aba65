package main

import (
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/pi-infra/pi-desktop/internal/backend"
)

func startSleepChild(t *testing.T) *backend.Supervisor {
	t.Helper()

	sup := backend.NewSupervisor()
	sup.Start(backend.Target{Path: "sleep", Args: []string{"60"}}, backend.LaunchSpec{
		Host: "127.0.0.1",
		Port: 8787,
	})
	if st := sup.Status(); st.State != "running" {
		t.Fatalf("state = %q, want running", st.State)
	}
	return sup
}

func waitDead(t *testing.T, pid int) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for {
		if err := syscall.Kill(pid, 0); err != nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("child %d still alive after shutdown", pid)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestServeWindowListenFailureKillsChild(t *testing.T) {
	t.Parallel()

	// Hold the port so ListenAndServe fails immediately, as when a second
	// shell instance is already running.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	sup := startSleepChild(t)
	pid := sup.Status().PID

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NewServeMux()}
	quit := make(chan os.Signal)

	if code := serveWindow(srv, sup, quit); code != 1 {
		t.Errorf("exit code = %d, want 1 on listen failure", code)
	}
	if st := sup.Status(); st.State != "terminated" {
		t.Errorf("state = %q, want terminated even when the server never came up", st.State)
	}
	waitDead(t, pid)
}

func TestServeWindowSignalShutdown(t *testing.T) {
	t.Parallel()

	sup := startSleepChild(t)
	pid := sup.Status().PID

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	srv := &http.Server{Addr: addr, Handler: http.NewServeMux()}
	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM

	if code := serveWindow(srv, sup, quit); code != 0 {
		t.Errorf("exit code = %d, want 0 on signal shutdown", code)
	}
	if st := sup.Status(); st.State != "terminated" {
		t.Errorf("state = %q, want terminated", st.State)
	}
	waitDead(t, pid)
}
