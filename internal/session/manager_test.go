package session

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
	"github.com/ayushi2910/video-streaming-platform/internal/session/mock_session"
)

// endpointPool hands out fake endpoints and remembers them per peer.
type endpointPool struct {
	mu    sync.Mutex
	made  map[protocol.ConnID][]*fakeEndpoint
	fail  error
	setup func(*fakeEndpoint)
}

func newEndpointPool() *endpointPool {
	return &endpointPool{made: make(map[protocol.ConnID][]*fakeEndpoint)}
}

func (p *endpointPool) factory(remote protocol.ConnID) (Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return nil, p.fail
	}
	ep := &fakeEndpoint{}
	if p.setup != nil {
		p.setup(ep)
	}
	p.made[remote] = append(p.made[remote], ep)
	return ep, nil
}

func TestCreateInitiatorSendsOfferThroughSignaler(t *testing.T) {
	ctrl := gomock.NewController(t)
	signaler := mock_session.NewMockSignaler(ctrl)
	pool := newEndpointPool()
	m := NewManager(signaler, pool.factory, nil, quietLogger())

	var sent *protocol.Message
	signaler.EXPECT().SendMessage(gomock.Any()).Do(func(msg *protocol.Message) { sent = msg }).Times(1)

	s, err := m.Create("peer-a", Initiator, localTracks())

	require.NoError(t, err)
	assert.Equal(t, StateOfferSent, s.State())
	require.NotNil(t, sent)
	assert.Equal(t, protocol.TypeOffer, sent.Type)
	assert.Equal(t, protocol.ConnID("peer-a"), sent.Target)
}

func TestCreateReplacesExistingSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	signaler := mock_session.NewMockSignaler(ctrl)
	pool := newEndpointPool()
	m := NewManager(signaler, pool.factory, nil, quietLogger())

	first, err := m.Create("peer-a", Responder, localTracks())
	require.NoError(t, err)
	second, err := m.Create("peer-a", Responder, localTracks())
	require.NoError(t, err)

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, StateClosed, first.State())
	got, ok := m.Get("peer-a")
	require.True(t, ok)
	assert.Same(t, second, got)

	eps := pool.made["peer-a"]
	require.Len(t, eps, 2)
	_, _, closed := eps[0].snapshot()
	assert.Equal(t, 1, closed)
	_, _, closed = eps[1].snapshot()
	assert.Equal(t, 0, closed)
}

func TestHandleSignalRoutesBySender(t *testing.T) {
	ctrl := gomock.NewController(t)
	signaler := mock_session.NewMockSignaler(ctrl)
	pool := newEndpointPool()
	m := NewManager(signaler, pool.factory, nil, quietLogger())

	_, err := m.Create("peer-a", Responder, localTracks())
	require.NoError(t, err)
	_, err = m.Create("peer-b", Responder, localTracks())
	require.NoError(t, err)

	signaler.EXPECT().SendMessage(gomock.Any()).Do(func(msg *protocol.Message) {
		assert.Equal(t, protocol.TypeAnswer, msg.Type)
		assert.Equal(t, protocol.ConnID("peer-b"), msg.Target)
	}).Times(1)

	require.NoError(t, m.HandleSignal(protocol.TypeCandidate, "peer-b", json.RawMessage(`"c"`)))
	require.NoError(t, m.HandleSignal(protocol.TypeOffer, "peer-b", json.RawMessage(`{"type":"offer"}`)))

	a, _ := m.Get("peer-a")
	b, _ := m.Get("peer-b")
	assert.Equal(t, StateAwaitingOffer, a.State())
	assert.Equal(t, StateAnswerExchanged, b.State())

	remote, candidates, _ := pool.made["peer-a"][0].snapshot()
	assert.Empty(t, remote)
	assert.Empty(t, candidates)
	_, candidates, _ = pool.made["peer-b"][0].snapshot()
	assert.Equal(t, []string{`"c"`}, candidates)
}

func TestHandleSignalUnknownSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	signaler := mock_session.NewMockSignaler(ctrl)
	m := NewManager(signaler, newEndpointPool().factory, nil, quietLogger())

	for _, typ := range []string{protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeCandidate} {
		err := m.HandleSignal(typ, "stranger", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrUnknownPeer)
		assert.ErrorIs(t, err, ErrProtocolViolation)
	}
	assert.Equal(t, 0, m.Len())
}

func TestCreateEndpointFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	signaler := mock_session.NewMockSignaler(ctrl)
	pool := newEndpointPool()
	pool.fail = errors.New("no transport")
	m := NewManager(signaler, pool.factory, nil, quietLogger())

	_, err := m.Create("peer-a", Initiator, localTracks())

	assert.ErrorIs(t, err, pool.fail)
	assert.Equal(t, 0, m.Len())
}

func TestCreateStartFailureLeavesNoSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	signaler := mock_session.NewMockSignaler(ctrl)
	pool := newEndpointPool()
	pool.setup = func(ep *fakeEndpoint) { ep.addTrackErr = errFake }
	m := NewManager(signaler, pool.factory, nil, quietLogger())

	_, err := m.Create("peer-a", Initiator, localTracks())

	assert.ErrorIs(t, err, errFake)
	assert.Equal(t, 0, m.Len())
	_, _, closed := pool.made["peer-a"][0].snapshot()
	assert.Equal(t, 1, closed)
}

func TestRemoveAndCloseAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	signaler := mock_session.NewMockSignaler(ctrl)
	rl := newRenderLog()
	pool := newEndpointPool()
	m := NewManager(signaler, pool.factory, rl, quietLogger())

	for _, id := range []protocol.ConnID{"c", "a", "b"} {
		_, err := m.Create(id, Responder, localTracks())
		require.NoError(t, err)
	}

	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, protocol.ConnID("a"), snap[0].Remote)
	assert.Equal(t, protocol.ConnID("c"), snap[2].Remote)

	m.Remove("b")
	m.Remove("b")
	assert.Equal(t, 2, m.Len())
	_, ok := m.Get("b")
	assert.False(t, ok)

	m.CloseAll()
	assert.Equal(t, 0, m.Len())
	assert.ElementsMatch(t, []protocol.ConnID{"b", "a", "c"}, rl.removed)
	for _, id := range []protocol.ConnID{"a", "b", "c"} {
		_, _, closed := pool.made[id][0].snapshot()
		assert.Equal(t, 1, closed, "endpoint %s", id)
	}
}
