package signaling

import (
	"encoding/json"
	"log/slog"

	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

// EventKind classifies relay messages the room client acts on.
type EventKind int

const (
	EventWelcome EventKind = iota
	EventMembersInRoom
	EventMemberJoined
	EventMemberLeft
	EventSignal
	EventError
)

var eventNames = [...]string{"welcome", "members-in-room", "member-joined", "member-left", "signal", "error"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is one relay message in the order it was received.
type Event struct {
	Kind EventKind

	// Self is set for EventWelcome.
	Self protocol.ConnID
	// RoomID is the room a membership event belongs to.
	RoomID string
	// Members is set for EventMembersInRoom and may be empty.
	Members []protocol.ConnID
	// Peer is the joining or leaving member, or the sender of a signal.
	Peer protocol.ConnID

	// SignalType and Payload are set for EventSignal.
	SignalType string
	Payload    json.RawMessage

	// Reason is set for EventError.
	Reason string
}

// Handler turns the relay's message stream into a single ordered stream of
// events.
type Handler struct {
	incoming <-chan *protocol.Message
	events   chan Event
	log      *slog.Logger
}

// NewHandler creates a handler reading from incoming.
func NewHandler(incoming <-chan *protocol.Message, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		incoming: incoming,
		events:   make(chan Event, queueSize),
		log:      log,
	}
}

// Events returns the event stream. It is closed after the incoming channel
// closes.
func (h *Handler) Events() <-chan Event {
	return h.events
}

// Start routes messages until incoming is closed.
func (h *Handler) Start() {
	defer close(h.events)

	for msg := range h.incoming {
		ev, ok := toEvent(msg)
		if !ok {
			h.log.Debug("Ignoring relay message", "type", msg.Type)
			continue
		}
		h.events <- ev
	}
}

func toEvent(msg *protocol.Message) (Event, bool) {
	if protocol.IsSignal(msg.Type) {
		if msg.Sender == "" {
			return Event{}, false
		}
		return Event{Kind: EventSignal, Peer: msg.Sender, SignalType: msg.Type, Payload: msg.Payload}, true
	}

	switch msg.Type {
	case protocol.TypeWelcome:
		return Event{Kind: EventWelcome, Self: msg.Self}, true

	case protocol.TypeMembersInRoom:
		return Event{Kind: EventMembersInRoom, RoomID: msg.RoomID, Members: msg.Members}, true

	case protocol.TypeMemberJoined:
		if msg.Member == "" {
			return Event{}, false
		}
		return Event{Kind: EventMemberJoined, RoomID: msg.RoomID, Peer: msg.Member}, true

	case protocol.TypeMemberLeft:
		if msg.Member == "" {
			return Event{}, false
		}
		return Event{Kind: EventMemberLeft, RoomID: msg.RoomID, Peer: msg.Member}, true

	case protocol.TypeError:
		return Event{Kind: EventError, Reason: msg.Error}, true
	}
	return Event{}, false
}
