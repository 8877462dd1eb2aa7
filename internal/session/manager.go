package session

import (
	"cmp"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/ayushi2910/video-streaming-platform/internal/errs"
	"github.com/ayushi2910/video-streaming-platform/internal/media"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

// Manager owns the local session set: at most one session per remote peer.
type Manager struct {
	mu       sync.Mutex
	sessions map[protocol.ConnID]*Session

	signaler    Signaler
	newEndpoint EndpointFactory
	renderer    Renderer
	log         *slog.Logger
}

// NewManager creates an empty session set. renderer may be nil.
func NewManager(signaler Signaler, factory EndpointFactory, renderer Renderer, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		sessions:    make(map[protocol.ConnID]*Session),
		signaler:    signaler,
		newEndpoint: factory,
		renderer:    renderer,
		log:         log,
	}
}

// Create starts a session with remote. An existing session for the same
// peer is closed before the new one becomes addressable.
func (m *Manager) Create(remote protocol.ConnID, role Role, tracks []media.Track) (*Session, error) {
	if old := m.take(remote); old != nil {
		m.log.Info("Replacing session", "peer", remote)
		old.Close()
	}

	endpoint, err := m.newEndpoint(remote)
	if err != nil {
		return nil, errs.NewPeer("create endpoint", string(remote), err)
	}

	s := New(Options{
		Remote:   remote,
		Role:     role,
		Endpoint: endpoint,
		Signaler: m.signaler,
		Renderer: m.renderer,
		Tracks:   tracks,
		Logger:   m.log,
	})

	m.mu.Lock()
	m.sessions[remote] = s
	m.mu.Unlock()

	if err := s.Start(); err != nil {
		m.drop(remote, s)
		s.Close()
		return nil, err
	}
	return s, nil
}

// Get returns the session for remote.
func (m *Manager) Get(remote protocol.ConnID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[remote]
	return s, ok
}

// HandleSignal routes a relayed negotiation message to the sender's
// session. A sender without a session is a protocol violation.
func (m *Manager) HandleSignal(msgType string, sender protocol.ConnID, payload json.RawMessage) error {
	s, ok := m.Get(sender)
	if !ok {
		return errs.NewPeer("handle "+msgType, string(sender), ErrUnknownPeer)
	}

	switch msgType {
	case protocol.TypeOffer:
		return s.HandleOffer(payload)
	case protocol.TypeAnswer:
		return s.HandleAnswer(payload)
	case protocol.TypeCandidate:
		return s.HandleCandidate(payload)
	default:
		return errs.Wrap("handle signal", ErrProtocolViolation, "unknown type "+msgType)
	}
}

// Remove closes and forgets the session with remote, if any.
func (m *Manager) Remove(remote protocol.ConnID) {
	if s := m.take(remote); s != nil {
		s.Close()
	}
}

// CloseAll closes every session and empties the set.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[protocol.ConnID]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Snapshot returns every session's info, sorted by peer.
func (m *Manager) Snapshot() []PeerInfo {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	infos := make([]PeerInfo, 0, len(all))
	for _, s := range all {
		infos = append(infos, s.Info())
	}
	slices.SortFunc(infos, func(a, b PeerInfo) int {
		return cmp.Compare(a.Remote, b.Remote)
	})
	return infos
}

func (m *Manager) take(remote protocol.ConnID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[remote]
	if !ok {
		return nil
	}
	delete(m.sessions, remote)
	return s
}

func (m *Manager) drop(remote protocol.ConnID, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[remote] == s {
		delete(m.sessions, remote)
	}
}
