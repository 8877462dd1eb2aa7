package protocol

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecsPreservePayloadBytes(t *testing.T) {
	payload := json.RawMessage(`{"type":"offer","sdp":"v=0\r\no=- 1 2 IN IP4 127.0.0.1\r\n"}`)
	msg := &Message{Type: TypeOffer, Sender: "abc", Payload: payload}

	for _, codec := range []Codec{JSON, MsgPack} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Marshal(msg)
			require.NoError(t, err)

			got, used, err := Decode(codec.FrameType(), data)
			require.NoError(t, err)
			assert.Equal(t, codec.Name(), used.Name())
			assert.Equal(t, TypeOffer, got.Type)
			assert.Equal(t, ConnID("abc"), got.Sender)
			assert.JSONEq(t, string(payload), string(got.Payload))
		})
	}
}

func TestJSONWireFieldNames(t *testing.T) {
	data, err := JSON.Marshal(&Message{Type: TypeJoinRoom, RoomID: "lobby"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"join-room","room_id":"lobby"}`, string(data))

	var msg Message
	require.NoError(t, JSON.Unmarshal([]byte(`{"type":"members-in-room","members":["a","b"]}`), &msg))
	assert.Equal(t, []ConnID{"a", "b"}, msg.Members)
}

func TestForFrame(t *testing.T) {
	tests := []struct {
		name      string
		frameType int
		want      Codec
		wantErr   bool
	}{
		{name: "given text frame when resolved then json", frameType: websocket.TextMessage, want: JSON},
		{name: "given binary frame when resolved then msgpack", frameType: websocket.BinaryMessage, want: MsgPack},
		{name: "given ping frame when resolved then error", frameType: websocket.PingMessage, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ForFrame(tt.frameType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFrame)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, codec, err := Decode(websocket.TextMessage, []byte("{not json"))
	assert.Error(t, err)
	assert.Equal(t, JSON, codec)
}

func TestIsSignal(t *testing.T) {
	assert.True(t, IsSignal(TypeOffer))
	assert.True(t, IsSignal(TypeAnswer))
	assert.True(t, IsSignal(TypeCandidate))
	assert.False(t, IsSignal(TypeJoinRoom))
	assert.False(t, IsSignal(""))
}
