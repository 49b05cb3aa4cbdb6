package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventWriteTimeout = 5 * time.Second
	eventPongWait     = 60 * time.Second
	eventPingInterval = eventPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventsHandler streams every finished sync batch as a JSON SyncEvent.
// The current status is sent once on connect.
func (h *Handler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.engine.Subscribe()
	defer unsubscribe()

	log := h.log.With("remote_addr", r.RemoteAddr)
	log.Info("Event stream opened")
	defer log.Info("Event stream closed")

	// The client never sends data; reading only surfaces close frames and
	// keeps pong handling alive.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(eventPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(eventPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
	if err := conn.WriteJSON(h.engine.Status()); err != nil {
		log.Warn("Failed to write initial status", "error", err)
		return
	}

	ticker := time.NewTicker(eventPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.Warn("Failed to write sync event", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
