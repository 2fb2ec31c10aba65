package shell

import (
	"github.com/pi-infra/pi-desktop/internal/backend"
	"github.com/pi-infra/pi-desktop/internal/bridge"
)

// backendPayload is pushed on connect and returned by the "status" request.
// Endpoint is always present, whatever the supervisor state — the UI polls
// the endpoint itself if it wants liveness.
type backendPayload struct {
	Endpoint string `json:"endpoint"`
	State    string `json:"state"`
	PID      int    `json:"pid,omitempty"`
}

func statusPayload(endpoint string, sup *backend.Supervisor) backendPayload {
	st := sup.Status()
	return backendPayload{Endpoint: endpoint, State: st.State, PID: st.PID}
}

// RegisterBridge wires the supervisor into the bridge protocol: initial
// state push, console streaming, and the "status" request.
func RegisterBridge(b *bridge.Server, sup *backend.Supervisor, endpoint string) {
	b.HandleConnect(func(c *bridge.Conn) {
		bridge.SendEvent(c, "backend", statusPayload(endpoint, sup))

		// Attach registers the writer and snapshots the replay buffer in one
		// step, so no console output can slip between the two.
		buf := sup.Console().Attach(c.ID(), func(data string) {
			bridge.SendEvent(c, "backend-log", data)
		})
		if buf != "" {
			bridge.SendEvent(c, "backend-log", buf)
		}
	})

	b.OnDisconnect(func(c *bridge.Conn) {
		sup.Console().RemoveWriter(c.ID())
	})

	b.Handle("status", func(c *bridge.Conn, msg *bridge.ClientMessage) {
		if msg.ID != nil {
			bridge.SendAck(c, *msg.ID, statusPayload(endpoint, sup))
		}
	})
}
