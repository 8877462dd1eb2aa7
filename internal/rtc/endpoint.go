package rtc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"

	"github.com/ayushi2910/video-streaming-platform/internal/media"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
	"github.com/ayushi2910/video-streaming-platform/internal/session"
)

// Endpoint is a session.Endpoint backed by a pion PeerConnection.
type Endpoint struct {
	pc  *webrtc.PeerConnection
	log *slog.Logger
}

// NewEndpoint creates a peer connection from api.
func NewEndpoint(api *webrtc.API, conf webrtc.Configuration, log *slog.Logger) (*Endpoint, error) {
	pc, err := api.NewPeerConnection(conf)
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Endpoint{pc: pc, log: log}, nil
}

// NewFactory returns a factory creating one Endpoint per remote peer.
func NewFactory(api *webrtc.API, conf webrtc.Configuration, log *slog.Logger) session.EndpointFactory {
	if log == nil {
		log = slog.Default()
	}
	return func(remote protocol.ConnID) (session.Endpoint, error) {
		return NewEndpoint(api, conf, log.With("peer", remote))
	}
}

// SignalingState exposes the underlying signaling state.
func (e *Endpoint) SignalingState() webrtc.SignalingState {
	return e.pc.SignalingState()
}

func (e *Endpoint) AddTrack(track media.Track) error {
	sender, err := e.pc.AddTrack(track.Local())
	if err != nil {
		return fmt.Errorf("add %s track: %w", track.Kind(), err)
	}

	// RTCP has to be read for the interceptors to run.
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

func (e *Endpoint) CreateOffer(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	offer, err := e.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	return json.Marshal(offer)
}

func (e *Endpoint) CreateAnswer(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answer, err := e.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	return json.Marshal(answer)
}

func (e *Endpoint) SetLocalDescription(ctx context.Context, raw json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	desc, err := parseDescription(raw)
	if err != nil {
		return err
	}
	return e.pc.SetLocalDescription(desc)
}

// SetRemoteDescription applies desc, rolling back a pending local offer
// when a remote offer collides with it.
func (e *Endpoint) SetRemoteDescription(ctx context.Context, raw json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	desc, err := parseDescription(raw)
	if err != nil {
		return err
	}

	if desc.Type == webrtc.SDPTypeOffer && e.pc.SignalingState() == webrtc.SignalingStateHaveLocalOffer {
		e.log.Info("Offer collision, rolling back local offer")
		rollback := webrtc.SessionDescription{Type: webrtc.SDPTypeRollback}
		if local := e.pc.PendingLocalDescription(); local != nil {
			rollback.SDP = local.SDP
		}
		if err := e.pc.SetLocalDescription(rollback); err != nil {
			return fmt.Errorf("rollback local offer: %w", err)
		}
	}

	return e.pc.SetRemoteDescription(desc)
}

func (e *Endpoint) AddCandidate(raw json.RawMessage) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return fmt.Errorf("parse ICE candidate: %w", err)
	}
	return e.pc.AddICECandidate(candidate)
}

func (e *Endpoint) OnCandidate(fn func(json.RawMessage)) {
	e.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		raw, err := json.Marshal(c.ToJSON())
		if err != nil {
			e.log.Warn("Failed to encode local candidate", "error", err)
			return
		}
		fn(raw)
	})
}

func (e *Endpoint) OnConnectivityChange(fn func(session.Connectivity)) {
	e.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		fn(connectivity(state))
	})
}

func (e *Endpoint) OnTrack(fn func(session.RemoteTrack)) {
	e.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		rt := &remoteTrack{track: track}
		go rt.drain(e.log)
		fn(rt)
	})
}

func (e *Endpoint) Close() error {
	return e.pc.Close()
}

func parseDescription(raw json.RawMessage) (webrtc.SessionDescription, error) {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		return desc, fmt.Errorf("parse session description: %w", err)
	}
	return desc, nil
}

func connectivity(state webrtc.PeerConnectionState) session.Connectivity {
	switch state {
	case webrtc.PeerConnectionStateConnecting:
		return session.ConnectivityConnecting
	case webrtc.PeerConnectionStateConnected:
		return session.ConnectivityConnected
	case webrtc.PeerConnectionStateDisconnected:
		return session.ConnectivityDisconnected
	case webrtc.PeerConnectionStateFailed:
		return session.ConnectivityFailed
	case webrtc.PeerConnectionStateClosed:
		return session.ConnectivityClosed
	default:
		return session.ConnectivityNew
	}
}

// remoteTrack counts packets of an incoming track. Counting is the
// rendering: frames are not decoded.
type remoteTrack struct {
	track   *webrtc.TrackRemote
	packets atomic.Uint64
}

func (t *remoteTrack) ID() string      { return t.track.ID() }
func (t *remoteTrack) Kind() string    { return t.track.Kind().String() }
func (t *remoteTrack) Packets() uint64 { return t.packets.Load() }

func (t *remoteTrack) drain(log *slog.Logger) {
	for {
		pkt, _, err := t.track.ReadRTP()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("Remote track ended", "track", t.track.ID(), "error", err)
			}
			return
		}
		t.count(pkt)
	}
}

// count ignores padding-only packets.
func (t *remoteTrack) count(pkt *rtp.Packet) {
	if len(pkt.Payload) > 0 {
		t.packets.Add(1)
	}
}
