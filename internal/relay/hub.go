// Package relay implements the signaling relay: a connection directory,
// the room registry and the signal router.
package relay

import (
	"log/slog"
	"sync"

	"github.com/ayushi2910/video-streaming-platform/internal/metrics"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

// Hub is the central brain of the relay. It tracks live connections and
// dispatches their messages to the registry and router. Rooms carry their
// own locks, so there is no central event loop.
type Hub struct {
	mu    sync.RWMutex
	conns map[protocol.ConnID]*Conn

	registry *Registry
	router   *Router
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewHub creates a Hub. m may be nil.
func NewHub(m *metrics.Metrics, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	h := &Hub{
		conns:   make(map[protocol.ConnID]*Conn),
		metrics: m,
		log:     log,
	}
	h.registry = NewRegistry(h, m, log)
	h.router = NewRouter(h, m, log)
	return h
}

// Registry exposes the hub's room registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Register makes c addressable and tells it its own identifier.
func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
	h.log.Info("Client registered", "conn", c.ID, "remote", c.ws.RemoteAddr())

	c.Send(&protocol.Message{Type: protocol.TypeWelcome, Self: c.ID})
}

// Unregister forgets c and removes it from every room. It runs once per
// connection, from the end of its read pump.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	_, ok := h.conns[c.ID]
	delete(h.conns, c.ID)
	h.mu.Unlock()
	if !ok {
		return
	}

	h.registry.DisconnectAll(c.ID)
	h.metrics.ConnectionClosed()
	h.log.Info("Client unregistered", "conn", c.ID)
}

// Notify implements Notifier.
func (h *Hub) Notify(id protocol.ConnID, msg *protocol.Message) bool {
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.Send(msg)
}

// Dispatch handles one message read from c. Room identifiers are opaque
// and compared byte for byte.
func (h *Hub) Dispatch(c *Conn, msg *protocol.Message) {
	if protocol.IsSignal(msg.Type) {
		if msg.Target == "" {
			h.log.Warn("Signal without target", "conn", c.ID, "type", msg.Type)
			c.Send(protocol.NewError("target is required"))
			return
		}
		h.router.Relay(msg.Type, c.ID, msg.Target, msg.Payload)
		return
	}

	switch msg.Type {
	case protocol.TypeJoinRoom:
		if msg.RoomID == "" {
			h.log.Warn("Join without room id", "conn", c.ID)
			c.Send(protocol.NewError("room_id is required"))
			return
		}
		h.registry.Join(c.ID, msg.RoomID)

	case protocol.TypeLeaveRoom:
		if msg.RoomID == "" {
			h.registry.DisconnectAll(c.ID)
			return
		}
		h.registry.Leave(c.ID, msg.RoomID)

	default:
		h.log.Warn("Unknown message type", "conn", c.ID, "type", msg.Type)
		c.Send(protocol.NewError("unknown message type: " + msg.Type))
	}
}

// Connections returns the number of registered connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
