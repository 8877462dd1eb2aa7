// Package room keeps a client's membership in one room and drives a peer
// session for every other member.
package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/ayushi2910/video-streaming-platform/internal/errs"
	"github.com/ayushi2910/video-streaming-platform/internal/media"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
	"github.com/ayushi2910/video-streaming-platform/internal/session"
	"github.com/ayushi2910/video-streaming-platform/internal/signaling"
)

var (
	ErrEmptyRoomID      = errors.New("room id is empty")
	ErrMediaUnavailable = errors.New("local media unavailable")
	ErrRelayClosed      = errors.New("relay connection closed")
)

// Sessions is the peer session set the client drives.
type Sessions interface {
	Create(remote protocol.ConnID, role session.Role, tracks []media.Track) (*session.Session, error)
	Remove(remote protocol.ConnID)
	HandleSignal(msgType string, sender protocol.ConnID, payload json.RawMessage) error
	CloseAll()
	Snapshot() []session.PeerInfo
}

// Status describes the client at one instant.
type Status struct {
	Self      protocol.ConnID
	RoomID    string
	Video     bool
	Audio     bool
	LastError string
	Peers     []session.PeerInfo
}

// InRoom reports whether the client has joined a room.
func (s Status) InRoom() bool { return s.RoomID != "" }

// Client is a room membership client. Commands and relay events are
// serialized, so a session created for one event exists before the next
// event is handled.
type Client struct {
	mu sync.Mutex

	signaler session.Signaler
	source   media.Source
	sessions Sessions
	log      *slog.Logger

	self      protocol.ConnID
	roomID    string
	stream    *media.Stream
	video     bool
	audio     bool
	lastError string
}

// New creates a client that is not in a room, with video and audio on.
func New(signaler session.Signaler, source media.Source, sessions Sessions, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		signaler: signaler,
		source:   source,
		sessions: sessions,
		log:      log,
		video:    true,
		audio:    true,
	}
}

// Create joins a freshly generated room and returns its id.
func (c *Client) Create(ctx context.Context) (string, error) {
	roomID, err := NewRoomID()
	if err != nil {
		return "", err
	}
	if err := c.JoinRoom(ctx, roomID); err != nil {
		return "", err
	}
	return roomID, nil
}

// JoinRoom acquires local media and asks the relay to join roomID. Sessions
// are created once the relay lists the current members. Joining while in a
// room leaves it first.
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return errs.New("join room", ErrEmptyRoomID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stream, err := c.source.Acquire(ctx)
	if err != nil {
		return errs.Wrap("join room", ErrMediaUnavailable, err.Error())
	}

	if c.roomID != "" {
		c.leaveLocked()
	}

	c.stream = stream
	c.applyToggles()
	c.roomID = roomID
	c.lastError = ""
	c.signaler.SendMessage(&protocol.Message{Type: protocol.TypeJoinRoom, RoomID: roomID})
	c.log.Info("Joining room", "room", roomID)
	return nil
}

// LeaveRoom closes every session, releases local media and tells the relay.
// It does nothing when not in a room.
func (c *Client) LeaveRoom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveLocked()
}

func (c *Client) leaveLocked() {
	c.sessions.CloseAll()
	if c.stream != nil {
		c.stream.Stop()
		c.stream = nil
	}
	if c.roomID == "" {
		return
	}
	c.signaler.SendMessage(&protocol.Message{Type: protocol.TypeLeaveRoom, RoomID: c.roomID})
	c.log.Info("Left room", "room", c.roomID)
	c.roomID = ""
}

// ToggleVideo flips the local video tracks on or off and returns the new
// state. Peers are not renegotiated.
func (c *Client) ToggleVideo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.video = !c.video
	c.applyToggles()
	return c.video
}

// ToggleAudio flips the local audio tracks on or off and returns the new
// state.
func (c *Client) ToggleAudio() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio = !c.audio
	c.applyToggles()
	return c.audio
}

func (c *Client) applyToggles() {
	if c.stream == nil {
		return
	}
	for _, t := range c.stream.TracksOf(media.KindVideo) {
		t.SetEnabled(c.video)
	}
	for _, t := range c.stream.TracksOf(media.KindAudio) {
		t.SetEnabled(c.audio)
	}
}

// Status returns a snapshot of the client and its sessions.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Self:      c.self,
		RoomID:    c.roomID,
		Video:     c.video,
		Audio:     c.audio,
		LastError: c.lastError,
		Peers:     c.sessions.Snapshot(),
	}
}

// Run handles relay events until ctx is done or the event stream ends, then
// leaves the room.
func (c *Client) Run(ctx context.Context, events <-chan signaling.Event) error {
	defer c.LeaveRoom()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrRelayClosed
			}
			c.HandleEvent(ev)
		}
	}
}

// HandleEvent applies one relay event. Protocol violations are logged and
// ignored.
func (c *Client) HandleEvent(ev signaling.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case signaling.EventWelcome:
		c.self = ev.Self
		c.log.Debug("Connected to relay", "self", ev.Self)

	case signaling.EventError:
		c.lastError = ev.Reason
		c.log.Warn("Relay reported an error", "reason", ev.Reason)

	case signaling.EventMembersInRoom:
		if !c.inRoom(ev) {
			return
		}
		for _, member := range ev.Members {
			if member == c.self {
				continue
			}
			c.createSession(member, session.Initiator)
		}

	case signaling.EventMemberJoined:
		if !c.inRoom(ev) || ev.Peer == c.self {
			return
		}
		c.createSession(ev.Peer, session.Responder)

	case signaling.EventMemberLeft:
		if !c.inRoom(ev) {
			return
		}
		c.sessions.Remove(ev.Peer)
		c.log.Info("Peer left", "peer", ev.Peer)

	case signaling.EventSignal:
		if err := c.sessions.HandleSignal(ev.SignalType, ev.Peer, ev.Payload); err != nil {
			if errors.Is(err, session.ErrProtocolViolation) {
				c.log.Warn("Ignoring out of order signal", "peer", ev.Peer, "type", ev.SignalType, "error", err)
				return
			}
			c.log.Error("Failed to apply signal", "peer", ev.Peer, "type", ev.SignalType, "error", err)
		}
	}
}

// inRoom reports whether ev belongs to the room the client is in. Events
// still in flight for a room the client left are dropped.
func (c *Client) inRoom(ev signaling.Event) bool {
	if c.roomID == "" {
		c.log.Debug("Ignoring membership event outside a room", "event", ev.Kind)
		return false
	}
	if ev.RoomID != c.roomID {
		c.log.Debug("Ignoring membership event for another room", "event", ev.Kind, "room", ev.RoomID, "current", c.roomID)
		return false
	}
	return true
}

func (c *Client) createSession(remote protocol.ConnID, role session.Role) {
	var tracks []media.Track
	if c.stream != nil {
		tracks = c.stream.Tracks()
	}
	if _, err := c.sessions.Create(remote, role, tracks); err != nil {
		c.log.Error("Failed to start session", "peer", remote, "role", role, "error", err)
		return
	}
	c.log.Info("Session started", "peer", remote, "role", role)
}
