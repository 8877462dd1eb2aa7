// Package session runs one offer/answer negotiation per remote peer.
package session

import (
	"context"
	"encoding/json"

	"github.com/ayushi2910/video-streaming-platform/internal/media"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

//go:generate mockgen -destination=mock_session/mock_signaler.go -package=mock_session github.com/ayushi2910/video-streaming-platform/internal/session Signaler

// Role is fixed when a session is created.
type Role int

const (
	// Initiator sends the offer. A joiner initiates towards every member
	// already in the room.
	Initiator Role = iota
	// Responder waits for the remote offer. Existing members respond to a
	// newcomer.
	Responder
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

// State is the negotiation state of a session.
type State int

const (
	StateCreated State = iota
	StateOfferSent
	StateAwaitingOffer
	StateAnswerExchanged
	// StateConnected is informational. Nothing negotiates differently
	// because of it.
	StateConnected
	StateClosed
)

var stateNames = map[State]string{
	StateCreated:         "created",
	StateOfferSent:       "offer-sent",
	StateAwaitingOffer:   "awaiting-offer",
	StateAnswerExchanged: "answer-exchanged",
	StateConnected:       "connected",
	StateClosed:          "closed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Connectivity is the transport state reported by an Endpoint.
type Connectivity string

const (
	ConnectivityNew          Connectivity = "new"
	ConnectivityConnecting   Connectivity = "connecting"
	ConnectivityConnected    Connectivity = "connected"
	ConnectivityDisconnected Connectivity = "disconnected"
	ConnectivityFailed       Connectivity = "failed"
	ConnectivityClosed       Connectivity = "closed"
)

// Signaler sends messages to the relay. Implementations must be safe for
// concurrent use.
type Signaler interface {
	SendMessage(msg *protocol.Message)
}

// RemoteTrack is media received from a peer.
type RemoteTrack interface {
	ID() string
	Kind() string
	Packets() uint64
}

// Endpoint is the real-time transport to one remote peer. Descriptions and
// candidates are JSON blobs the relay forwards untouched.
type Endpoint interface {
	AddTrack(track media.Track) error
	CreateOffer(ctx context.Context) (json.RawMessage, error)
	CreateAnswer(ctx context.Context) (json.RawMessage, error)
	SetLocalDescription(ctx context.Context, desc json.RawMessage) error
	// SetRemoteDescription applies an offer or answer. An offer arriving
	// while a local offer is pending rolls the local offer back first.
	SetRemoteDescription(ctx context.Context, desc json.RawMessage) error
	AddCandidate(candidate json.RawMessage) error

	OnCandidate(fn func(candidate json.RawMessage))
	OnConnectivityChange(fn func(state Connectivity))
	OnTrack(fn func(track RemoteTrack))

	Close() error
}

// EndpointFactory creates the endpoint for a new session.
type EndpointFactory func(remote protocol.ConnID) (Endpoint, error)

// PeerInfo is what a Renderer knows about one peer.
type PeerInfo struct {
	Remote       protocol.ConnID
	Role         Role
	State        State
	Connectivity Connectivity
	Tracks       []RemoteTrack
}

// Renderer displays remote peers. Calls may arrive from any goroutine.
type Renderer interface {
	UpdatePeer(info PeerInfo)
	RemovePeer(remote protocol.ConnID)
}

type nopRenderer struct{}

func (nopRenderer) UpdatePeer(PeerInfo)        {}
func (nopRenderer) RemovePeer(protocol.ConnID) {}
