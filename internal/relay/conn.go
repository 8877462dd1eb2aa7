package relay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lithammer/shortuuid/v4"

	"github.com/ayushi2910/video-streaming-platform/internal/metrics"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Enough for SDP with many candidates.
	maxMessageSize = 64 * 1024

	// Outbound messages buffered per connection before it is dropped as too slow.
	sendQueueSize = 256
)

// Conn wraps one websocket connection to the relay.
type Conn struct {
	ID protocol.ConnID

	hub  *Hub
	ws   *websocket.Conn
	send chan *protocol.Message
	done chan struct{}

	// binary is set once the client sends a msgpack frame; replies follow
	// the codec of the last frame received.
	binary atomic.Bool

	closeOnce sync.Once
}

// NewConn assigns a fresh identifier to ws.
func NewConn(hub *Hub, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:   protocol.ConnID(shortuuid.New()),
		hub:  hub,
		ws:   ws,
		send: make(chan *protocol.Message, sendQueueSize),
		done: make(chan struct{}),
	}
}

// Send queues msg without blocking. A connection whose queue is full is
// closed; its read pump then unregisters it.
func (c *Conn) Send(msg *protocol.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.hub.metrics.Dropped(metrics.DropQueueFull)
		c.hub.log.Warn("Send queue full, dropping connection", "conn", c.ID)
		c.Close()
		return false
	}
}

// Close stops the write pump and closes the socket. Safe to call more
// than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

func (c *Conn) codec() protocol.Codec {
	if c.binary.Load() {
		return protocol.MsgPack
	}
	return protocol.JSON
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. All of a
// connection's room operations happen on this goroutine, and DisconnectAll
// runs only after it returns.
func (c *Conn) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		frameType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.log.Warn("Websocket read failed", "conn", c.ID, "error", err)
			}
			return
		}

		msg, codec, err := protocol.Decode(frameType, data)
		if codec != nil {
			c.binary.Store(codec == protocol.MsgPack)
		}
		if err != nil {
			c.hub.log.Warn("Malformed message", "conn", c.ID, "error", err)
			c.Send(protocol.NewError("malformed message"))
			continue
		}

		c.hub.Dispatch(c, msg)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			codec := c.codec()
			data, err := codec.Marshal(msg)
			if err != nil {
				c.hub.log.Error("Failed to encode message", "conn", c.ID, "type", msg.Type, "error", err)
				continue
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(codec.FrameType(), data); err != nil {
				c.hub.log.Debug("Websocket write failed", "conn", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
