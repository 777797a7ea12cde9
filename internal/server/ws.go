// Package server provides the HTTP server for the mudra gesture detection system.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const (
	// diagnosticsInterval is how often connected clients receive a live
	// distances snapshot.
	diagnosticsInterval = 200 * time.Millisecond

	// publishBuffer bounds queued events awaiting broadcast; a stalled
	// write loop loses events rather than stalling the publisher.
	publishBuffer = 256
)

// Diagnoser supplies the live per-hand readout and calibration session
// progress pushed between events.
type Diagnoser interface {
	Diagnostics() app.Diagnostics
	SessionStatus() (gesture.Status, bool)
}

// EventsHandler streams gesture events and live diagnostics to WebSocket
// clients. Events arrive via Publish and are queued to the write loop,
// which is the only goroutine that ever writes a connection; the websocket
// protocol implementation allows at most one concurrent writer per
// connection.
type EventsHandler struct {
	diag    Diagnoser
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex

	queue     chan app.Event
	stop      chan struct{}
	closeOnce sync.Once
}

// NewEventsHandler creates an EventsHandler polling diag for snapshots.
func NewEventsHandler(diag Diagnoser) *EventsHandler {
	h := &EventsHandler{
		diag:    diag,
		clients: make(map[*websocket.Conn]bool),
		queue:   make(chan app.Event, publishBuffer),
		stop:    make(chan struct{}),
	}
	go h.writeLoop()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish queues one gesture event for broadcast. It never writes a
// connection itself and never blocks.
func (h *EventsHandler) Publish(ev app.Event) {
	select {
	case h.queue <- ev:
	default:
		log.Printf("Event queue full, dropping %s event", ev.Type)
	}
}

// Close stops the write loop.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() {
		close(h.stop)
	})
}

// sessionPayload mirrors the REST calibration resource: durations go out
// in seconds on both surfaces.
type sessionPayload struct {
	State              string  `json:"state"`
	Samples            int     `json:"samples"`
	Required           int     `json:"required"`
	CountdownRemaining float64 `json:"countdown_remaining"`
	Hint               string  `json:"hint,omitempty"`
}

// writeLoop serializes all connection writes: queued events as they
// arrive, diagnostics snapshots on a ticker.
func (h *EventsHandler) writeLoop() {
	ticker := time.NewTicker(diagnosticsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case ev := <-h.queue:
			h.send(map[string]any{
				"type":  "event",
				"event": ev,
			})
		case <-ticker.C:
			h.mu.RLock()
			idle := len(h.clients) == 0
			h.mu.RUnlock()
			if idle {
				continue
			}

			payload := map[string]any{
				"type":        "diagnostics",
				"diagnostics": h.diag.Diagnostics(),
			}
			if st, running := h.diag.SessionStatus(); running {
				payload["session"] = sessionPayload{
					State:              string(st.State),
					Samples:            st.Samples,
					Required:           st.Required,
					CountdownRemaining: st.CountdownRemaining.Seconds(),
					Hint:               st.Hint,
				}
			}
			h.send(payload)
		}
	}
}

func (h *EventsHandler) send(payload map[string]any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}
