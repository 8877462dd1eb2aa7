package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushi2910/video-streaming-platform/internal/metrics"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

func TestRelayDeliversToTargetOnly(t *testing.T) {
	rec := newRecorder("a", "b", "c")
	router := NewRouter(rec, nil, quietLogger())
	payload := json.RawMessage(`{"candidate":"candidate:1 1 udp 2122260223 10.0.0.2 5000 typ host","sdpMid":"0"}`)

	ok := router.Relay(protocol.TypeCandidate, "a", "b", payload)

	assert.True(t, ok)
	got := rec.take()
	require.Len(t, got, 1)
	assert.Equal(t, protocol.ConnID("b"), got[0].to)
	assert.Equal(t, protocol.TypeCandidate, got[0].msg.Type)
	assert.Equal(t, protocol.ConnID("a"), got[0].msg.Sender)
	assert.Empty(t, got[0].msg.Target)
	assert.Equal(t, string(payload), string(got[0].msg.Payload))
}

func TestRelayUnknownTargetDropped(t *testing.T) {
	rec := newRecorder("a")
	m := metrics.New()
	router := NewRouter(rec, m, quietLogger())

	ok := router.Relay(protocol.TypeOffer, "a", "gone", json.RawMessage(`{}`))

	assert.False(t, ok)
	assert.Empty(t, rec.take())
}

func TestRelayDoesNotRequireSharedRoom(t *testing.T) {
	rec := newRecorder("a", "b")
	reg := NewRegistry(rec, nil, quietLogger())
	router := NewRouter(rec, nil, quietLogger())
	reg.Join("a", "one")
	reg.Join("b", "two")
	rec.take()

	assert.True(t, router.Relay(protocol.TypeOffer, "a", "b", json.RawMessage(`{"type":"offer","sdp":""}`)))
	assert.Len(t, rec.take(), 1)
}
