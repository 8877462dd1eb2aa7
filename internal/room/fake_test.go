package room

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"

	"github.com/ayushi2910/video-streaming-platform/internal/media"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
	"github.com/ayushi2910/video-streaming-platform/internal/session"
)

var errNoCamera = errors.New("no camera")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type outbox struct {
	mu   sync.Mutex
	msgs []*protocol.Message
}

func (o *outbox) SendMessage(msg *protocol.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
}

func (o *outbox) types() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.msgs))
	for _, m := range o.msgs {
		out = append(out, m.Type)
	}
	return out
}

func (o *outbox) last() *protocol.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.msgs) == 0 {
		return nil
	}
	return o.msgs[len(o.msgs)-1]
}

type fakeTrack struct {
	kind    media.Kind
	enabled atomic.Bool
}

func newFakeTrack(kind media.Kind) *fakeTrack {
	t := &fakeTrack{kind: kind}
	t.enabled.Store(true)
	return t
}

func (t *fakeTrack) ID() string               { return string(t.kind) }
func (t *fakeTrack) Kind() media.Kind         { return t.kind }
func (t *fakeTrack) Local() webrtc.TrackLocal { return nil }
func (t *fakeTrack) SetEnabled(enabled bool)  { t.enabled.Store(enabled) }
func (t *fakeTrack) Enabled() bool            { return t.enabled.Load() }

// fakeSource hands out streams and records when they are stopped.
type fakeSource struct {
	err      error
	acquired int
	stopped  int
	video    *fakeTrack
	audio    *fakeTrack

	// onStop runs when a stream is released.
	onStop func()
}

func (s *fakeSource) Acquire(ctx context.Context) (*media.Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.acquired++
	s.video = newFakeTrack(media.KindVideo)
	s.audio = newFakeTrack(media.KindAudio)
	return media.NewStream([]media.Track{s.video, s.audio}, func() {
		s.stopped++
		if s.onStop != nil {
			s.onStop()
		}
	}), nil
}

type created struct {
	remote protocol.ConnID
	role   session.Role
	tracks int
}

type signal struct {
	msgType string
	sender  protocol.ConnID
	payload string
}

// fakeSessions records what the client asks of its session set.
type fakeSessions struct {
	live      map[protocol.ConnID]session.Role
	created   []created
	removed   []protocol.ConnID
	signals   []signal
	closedAll int
	createErr error
	signalErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{live: make(map[protocol.ConnID]session.Role)}
}

func (f *fakeSessions) Create(remote protocol.ConnID, role session.Role, tracks []media.Track) (*session.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.live[remote] = role
	f.created = append(f.created, created{remote: remote, role: role, tracks: len(tracks)})
	return nil, nil
}

func (f *fakeSessions) Remove(remote protocol.ConnID) {
	delete(f.live, remote)
	f.removed = append(f.removed, remote)
}

func (f *fakeSessions) HandleSignal(msgType string, sender protocol.ConnID, payload json.RawMessage) error {
	f.signals = append(f.signals, signal{msgType: msgType, sender: sender, payload: string(payload)})
	if _, ok := f.live[sender]; !ok {
		return session.ErrUnknownPeer
	}
	return f.signalErr
}

func (f *fakeSessions) CloseAll() {
	f.closedAll++
	f.live = make(map[protocol.ConnID]session.Role)
}

func (f *fakeSessions) Snapshot() []session.PeerInfo {
	infos := make([]session.PeerInfo, 0, len(f.live))
	for remote, role := range f.live {
		infos = append(infos, session.PeerInfo{Remote: remote, Role: role})
	}
	return infos
}
