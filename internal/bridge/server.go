// Package bridge is the push channel between the shell and the UI it serves:
// a WebSocket endpoint the page connects to for backend status, console
// output, and ack-based requests.
package bridge

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// HandlerFunc processes a client message. Handlers must return promptly —
// long-running work should be spawned in a goroutine.
type HandlerFunc func(c *Conn, msg *ClientMessage)

// Server manages UI connections and message dispatch.
type Server struct {
	mu    sync.RWMutex
	conns map[*Conn]struct{}

	handlers     map[string]HandlerFunc
	disconnectFn func(c *Conn) // called when a connection is removed
}

func NewServer() *Server {
	return &Server{
		conns:    make(map[*Conn]struct{}),
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers a handler for a named event.
func (s *Server) Handle(event string, fn HandlerFunc) {
	s.handlers[event] = fn
}

// HandleConnect registers a handler that fires when a UI connection is
// established, before the read pump starts. Used to push initial state.
func (s *Server) HandleConnect(fn func(c *Conn)) {
	s.handlers["__connect"] = func(c *Conn, _ *ClientMessage) {
		fn(c)
	}
}

// OnDisconnect registers a callback that fires when a connection is removed.
func (s *Server) OnDisconnect(fn func(c *Conn)) {
	s.disconnectFn = fn
}

// ServeHTTP upgrades the HTTP request to a WebSocket connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The shell serves the UI from the same loopback origin; in dev the
		// frontend dev server proxies to us.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("bridge accept", "err", err)
		return
	}

	c := newConn(ws, s)
	s.add(c)

	slog.Debug("bridge connected", "remote", r.RemoteAddr)

	if h, ok := s.handlers["__connect"]; ok {
		h(c, nil)
	}

	// Block on the read pump — this goroutine is owned by net/http
	c.readPump(r.Context())
}

// Broadcast marshals the event once and pushes it to every connection.
func (s *Server) Broadcast(event string, data any) {
	raw, err := json.Marshal(ServerMessage[any]{Event: event, Data: data})
	if err != nil {
		slog.Error("bridge marshal broadcast", "err", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.conns {
		c.writeRaw(raw)
	}
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func (s *Server) add(c *Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) remove(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	if s.disconnectFn != nil {
		s.disconnectFn(c)
	}

	slog.Debug("bridge disconnected", "remaining", s.ConnectionCount())
}

func (s *Server) dispatch(c *Conn, msg *ClientMessage) {
	h, ok := s.handlers[msg.Event]
	if !ok {
		slog.Warn("bridge unknown event", "event", msg.Event)
		if msg.ID != nil {
			SendAck(c, *msg.ID, ErrorResponse{OK: false, Msg: "unknown event: " + msg.Event})
		}
		return
	}
	// Run handlers off the read pump so slow ones don't delay other messages.
	go h(c, msg)
}
