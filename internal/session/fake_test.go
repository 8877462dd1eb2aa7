package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/ayushi2910/video-streaming-platform/internal/media"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

var errFake = errors.New("fake endpoint failure")

// fakeEndpoint records what a session asks of its transport.
type fakeEndpoint struct {
	mu         sync.Mutex
	tracks     []string
	local      []string
	remote     []string
	candidates []string
	closed     int

	addTrackErr error
	remoteErr   error
	// beforeAnswer runs inside CreateAnswer, before the context is checked.
	beforeAnswer func()

	onCandidate func(json.RawMessage)
	onConn      func(Connectivity)
	onTrack     func(RemoteTrack)
}

func (f *fakeEndpoint) AddTrack(track media.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addTrackErr != nil {
		return f.addTrackErr
	}
	f.tracks = append(f.tracks, track.ID())
	return nil
}

func (f *fakeEndpoint) CreateOffer(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"type":"offer","sdp":"fake-offer"}`), nil
}

func (f *fakeEndpoint) CreateAnswer(ctx context.Context) (json.RawMessage, error) {
	if f.beforeAnswer != nil {
		f.beforeAnswer()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"type":"answer","sdp":"fake-answer"}`), nil
}

func (f *fakeEndpoint) SetLocalDescription(ctx context.Context, desc json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.local = append(f.local, string(desc))
	return nil
}

func (f *fakeEndpoint) SetRemoteDescription(ctx context.Context, desc json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remoteErr != nil {
		return f.remoteErr
	}
	f.remote = append(f.remote, string(desc))
	return nil
}

func (f *fakeEndpoint) AddCandidate(candidate json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidates = append(f.candidates, string(candidate))
	return nil
}

func (f *fakeEndpoint) OnCandidate(fn func(json.RawMessage))       { f.onCandidate = fn }
func (f *fakeEndpoint) OnConnectivityChange(fn func(Connectivity)) { f.onConn = fn }
func (f *fakeEndpoint) OnTrack(fn func(RemoteTrack))               { f.onTrack = fn }

func (f *fakeEndpoint) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeEndpoint) snapshot() (remote, candidates []string, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.remote...), append([]string(nil), f.candidates...), f.closed
}

// sentBox is a Signaler that keeps every message.
type sentBox struct {
	mu   sync.Mutex
	msgs []*protocol.Message
}

func (b *sentBox) SendMessage(msg *protocol.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
}

func (b *sentBox) all() []*protocol.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*protocol.Message(nil), b.msgs...)
}

// renderLog is a Renderer that remembers the last info per peer.
type renderLog struct {
	mu      sync.Mutex
	peers   map[protocol.ConnID]PeerInfo
	removed []protocol.ConnID
}

func newRenderLog() *renderLog {
	return &renderLog{peers: make(map[protocol.ConnID]PeerInfo)}
}

func (r *renderLog) UpdatePeer(info PeerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[info.Remote] = info
}

func (r *renderLog) RemovePeer(remote protocol.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, remote)
	r.removed = append(r.removed, remote)
}

type fakeTrack struct {
	id      string
	kind    media.Kind
	enabled bool
}

func (t *fakeTrack) ID() string               { return t.id }
func (t *fakeTrack) Kind() media.Kind         { return t.kind }
func (t *fakeTrack) Local() webrtc.TrackLocal { return nil }
func (t *fakeTrack) SetEnabled(enabled bool)  { t.enabled = enabled }
func (t *fakeTrack) Enabled() bool            { return t.enabled }

type fakeRemoteTrack struct{ id string }

func (t fakeRemoteTrack) ID() string      { return t.id }
func (t fakeRemoteTrack) Kind() string    { return "video" }
func (t fakeRemoteTrack) Packets() uint64 { return 0 }

func localTracks() []media.Track {
	return []media.Track{
		&fakeTrack{id: "video", kind: media.KindVideo, enabled: true},
		&fakeTrack{id: "audio", kind: media.KindAudio, enabled: true},
	}
}
