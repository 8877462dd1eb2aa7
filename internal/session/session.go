package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/ayushi2910/video-streaming-platform/internal/errs"
	"github.com/ayushi2910/video-streaming-platform/internal/media"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

// Options configures a Session.
type Options struct {
	Remote   protocol.ConnID
	Role     Role
	Endpoint Endpoint
	Signaler Signaler
	Renderer Renderer
	Tracks   []media.Track
	Logger   *slog.Logger
}

// Session negotiates with one remote peer.
//
// Negotiation methods are called from a single event loop. Endpoint
// callbacks and Close may arrive from other goroutines.
type Session struct {
	remote   protocol.ConnID
	role     Role
	endpoint Endpoint
	signaler Signaler
	renderer Renderer
	tracks   []media.Track
	log      *slog.Logger

	// ctx is cancelled by Close and aborts any negotiation step in flight.
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	state        State
	remoteSet    bool
	pending      []json.RawMessage
	connectivity Connectivity
	remoteTracks []RemoteTrack

	closeOnce sync.Once
	closeErr  error
}

// New creates a session in StateCreated and subscribes to its endpoint.
func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = nopRenderer{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		remote:       opts.Remote,
		role:         opts.Role,
		endpoint:     opts.Endpoint,
		signaler:     opts.Signaler,
		renderer:     renderer,
		tracks:       opts.Tracks,
		log:          log.With("peer", opts.Remote, "role", opts.Role.String()),
		ctx:          ctx,
		cancel:       cancel,
		state:        StateCreated,
		connectivity: ConnectivityNew,
	}

	s.endpoint.OnCandidate(s.sendCandidate)
	s.endpoint.OnConnectivityChange(s.connectivityChanged)
	s.endpoint.OnTrack(s.trackAdded)
	return s
}

func (s *Session) Remote() protocol.ConnID { return s.remote }
func (s *Session) Role() Role              { return s.role }

// State returns the current negotiation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Info returns a snapshot for rendering.
func (s *Session) Info() PeerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked()
}

func (s *Session) infoLocked() PeerInfo {
	return PeerInfo{
		Remote:       s.remote,
		Role:         s.role,
		State:        s.state,
		Connectivity: s.connectivity,
		Tracks:       slices.Clone(s.remoteTracks),
	}
}

// Start attaches every local track, then either sends an offer
// (initiator) or waits for one (responder).
func (s *Session) Start() error {
	for _, track := range s.tracks {
		if err := s.endpoint.AddTrack(track); err != nil {
			return errs.NewPeer("attach track", string(s.remote), err)
		}
	}

	if s.role == Responder {
		if !s.transition(StateAwaitingOffer) {
			return ErrClosed
		}
		return nil
	}

	offer, err := s.endpoint.CreateOffer(s.ctx)
	if err != nil {
		return errs.NewPeer("create offer", string(s.remote), err)
	}
	if err := s.endpoint.SetLocalDescription(s.ctx, offer); err != nil {
		return errs.NewPeer("set local offer", string(s.remote), err)
	}
	if !s.transition(StateOfferSent) {
		return ErrClosed
	}
	s.signaler.SendMessage(protocol.NewSignal(protocol.TypeOffer, s.remote, offer))
	s.log.Debug("Sent offer")
	return nil
}

// HandleOffer applies a remote offer and answers it. Offers are accepted in
// every state but closed, which also covers renegotiation and glare.
func (s *Session) HandleOffer(offer json.RawMessage) error {
	if s.State() == StateClosed {
		return ErrClosed
	}

	if err := s.endpoint.SetRemoteDescription(s.ctx, offer); err != nil {
		return errs.NewPeer("apply offer", string(s.remote), err)
	}
	s.flushPending()

	answer, err := s.endpoint.CreateAnswer(s.ctx)
	if err != nil {
		return errs.NewPeer("create answer", string(s.remote), err)
	}
	if err := s.endpoint.SetLocalDescription(s.ctx, answer); err != nil {
		return errs.NewPeer("set local answer", string(s.remote), err)
	}
	if !s.transition(StateAnswerExchanged) {
		return ErrClosed
	}
	s.signaler.SendMessage(protocol.NewSignal(protocol.TypeAnswer, s.remote, answer))
	s.log.Debug("Sent answer")
	return nil
}

// HandleAnswer applies the remote answer to our offer. It is only valid in
// StateOfferSent.
func (s *Session) HandleAnswer(answer json.RawMessage) error {
	switch st := s.State(); st {
	case StateClosed:
		return ErrClosed
	case StateOfferSent:
	default:
		return errs.Wrap("handle answer", ErrProtocolViolation, "answer in state "+st.String())
	}

	if err := s.endpoint.SetRemoteDescription(s.ctx, answer); err != nil {
		return errs.NewPeer("apply answer", string(s.remote), err)
	}
	s.flushPending()

	if !s.transition(StateAnswerExchanged) {
		return ErrClosed
	}
	return nil
}

// HandleCandidate adds a remote candidate, or buffers it until a remote
// description has been applied.
func (s *Session) HandleCandidate(candidate json.RawMessage) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.remoteSet {
		s.pending = append(s.pending, candidate)
		s.mu.Unlock()
		s.log.Debug("Buffered candidate", "pending", len(s.pending))
		return nil
	}
	s.mu.Unlock()

	if err := s.endpoint.AddCandidate(candidate); err != nil {
		return errs.NewPeer("add candidate", string(s.remote), err)
	}
	return nil
}

// Close tears the session down. Safe to call more than once and while a
// negotiation step is running.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		s.pending = nil
		s.remoteTracks = nil
		s.mu.Unlock()

		s.cancel()
		if err := s.endpoint.Close(); err != nil {
			s.closeErr = errs.NewPeer("close endpoint", string(s.remote), err)
		}
		s.renderer.RemovePeer(s.remote)
		s.log.Debug("Session closed")
	})
	return s.closeErr
}

// flushPending marks the remote description as applied and adds buffered
// candidates in the order they arrived.
func (s *Session) flushPending() {
	s.mu.Lock()
	s.remoteSet = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, c := range pending {
		if err := s.endpoint.AddCandidate(c); err != nil {
			s.log.Warn("Failed to add buffered candidate", "error", err)
		}
	}
}

// transition moves to next unless the session is closed.
func (s *Session) transition(next State) bool {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return false
	}
	s.state = next
	info := s.infoLocked()
	s.mu.Unlock()

	s.renderer.UpdatePeer(info)
	return true
}

func (s *Session) sendCandidate(candidate json.RawMessage) {
	if s.State() == StateClosed {
		return
	}
	s.signaler.SendMessage(protocol.NewSignal(protocol.TypeCandidate, s.remote, candidate))
}

func (s *Session) connectivityChanged(c Connectivity) {
	s.log.Info("Connectivity changed", "state", string(c))

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.connectivity = c
	if c == ConnectivityConnected && s.state == StateAnswerExchanged {
		s.state = StateConnected
	}
	info := s.infoLocked()
	s.mu.Unlock()

	s.renderer.UpdatePeer(info)
}

func (s *Session) trackAdded(track RemoteTrack) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.remoteTracks = append(s.remoteTracks, track)
	info := s.infoLocked()
	s.mu.Unlock()

	s.log.Info("Remote track", "track", track.ID(), "kind", track.Kind())
	s.renderer.UpdatePeer(info)
}
