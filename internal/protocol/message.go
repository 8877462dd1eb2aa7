// Package protocol defines the messages exchanged between clients and the relay.
package protocol

import "encoding/json"

// ConnID identifies a single relay connection. The relay assigns it on
// connect and forgets it on disconnect.
type ConnID string

// Message represents all websocket messages between clients and the relay.
// Payload is opaque to the relay and is forwarded byte for byte.
type Message struct {
	Type    string          `json:"type" msgpack:"type"`
	RoomID  string          `json:"room_id,omitempty" msgpack:"room_id,omitempty"`
	Target  ConnID          `json:"target,omitempty" msgpack:"target,omitempty"`
	Sender  ConnID          `json:"sender,omitempty" msgpack:"sender,omitempty"`
	Self    ConnID          `json:"self,omitempty" msgpack:"self,omitempty"`
	Member  ConnID          `json:"member,omitempty" msgpack:"member,omitempty"`
	Members []ConnID        `json:"members,omitempty" msgpack:"members,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty" msgpack:"payload,omitempty"`
	Error   string          `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Message type constants.
const (
	// client to relay
	TypeJoinRoom  = "join-room"
	TypeLeaveRoom = "leave-room"

	// relay to client
	TypeWelcome       = "welcome"
	TypeMembersInRoom = "members-in-room"
	TypeMemberJoined  = "member-joined"
	TypeMemberLeft    = "member-left"
	TypeError         = "error"

	// both directions, routed by target
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
)

// IsSignal reports whether t is one of the negotiation message types the
// relay forwards to a single target.
func IsSignal(t string) bool {
	switch t {
	case TypeOffer, TypeAnswer, TypeCandidate:
		return true
	}
	return false
}

// NewSignal builds an outbound negotiation message addressed to target.
func NewSignal(t string, target ConnID, payload json.RawMessage) *Message {
	return &Message{Type: t, Target: target, Payload: payload}
}

// NewError builds an error reply.
func NewError(reason string) *Message {
	return &Message{Type: TypeError, Error: reason}
}
