// Package server exposes the relay over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/ayushi2910/video-streaming-platform/internal/metrics"
	"github.com/ayushi2910/video-streaming-platform/internal/relay"
)

// Configure the websocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// Origins are enforced by the CORS layer for HTTP routes; browsers on any
	// origin may open the signaling socket.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHandler wires the relay routes. m may be nil to disable /metrics.
func NewHandler(hub *relay.Hub, m *metrics.Metrics, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthCheckHandler(hub))
	mux.HandleFunc("/ws", ServeWs(hub))
	mux.HandleFunc("/rooms", roomsHandler(hub))
	mux.HandleFunc("/r/", roomHandler(hub))
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(mux)
}

func healthCheckHandler(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Signaling relay is healthy. %d connections.\n", hub.Connections())
	}
}

// ServeWs returns an http.HandlerFunc that upgrades requests to relay
// connections.
func ServeWs(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("Failed to upgrade connection", "remote", r.RemoteAddr, "error", err)
			return
		}

		conn := relay.NewConn(hub, ws)
		hub.Register(conn)

		go conn.WritePump()
		go conn.ReadPump()
	}
}

func roomsHandler(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.Registry().Rooms())
	}
}

// roomHandler answers /r/<room-id>, the path of shareable room links.
func roomHandler(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/r/"), "/")
		if roomID == "" {
			http.NotFound(w, r)
			return
		}
		snap, ok := hub.Registry().Room(roomID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
