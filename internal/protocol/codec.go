package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrUnknownFrame = errors.New("unsupported websocket frame type")

// Codec encodes messages for one websocket frame type.
type Codec interface {
	Name() string
	FrameType() int
	Marshal(msg *Message) ([]byte, error)
	Unmarshal(data []byte, msg *Message) error
}

var (
	// JSON is carried in text frames and is what browsers speak.
	JSON Codec = jsonCodec{}

	// MsgPack is carried in binary frames.
	MsgPack Codec = msgpackCodec{}
)

// ForFrame returns the codec matching a websocket frame type.
func ForFrame(frameType int) (Codec, error) {
	switch frameType {
	case websocket.TextMessage:
		return JSON, nil
	case websocket.BinaryMessage:
		return MsgPack, nil
	default:
		return nil, fmt.Errorf("frame type %d: %w", frameType, ErrUnknownFrame)
	}
}

// Decode reads a message from a raw frame.
func Decode(frameType int, data []byte) (*Message, Codec, error) {
	codec, err := ForFrame(frameType)
	if err != nil {
		return nil, nil, err
	}
	var msg Message
	if err := codec.Unmarshal(data, &msg); err != nil {
		return nil, codec, fmt.Errorf("decode %s message: %w", codec.Name(), err)
	}
	return &msg, codec, nil
}

type jsonCodec struct{}

func (jsonCodec) Name() string   { return "json" }
func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Marshal(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg *Message) error {
	return json.Unmarshal(data, msg)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string   { return "msgpack" }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Marshal(msg *Message) ([]byte, error) {
	return msgpack.Marshal(msg)
}

func (msgpackCodec) Unmarshal(data []byte, msg *Message) error {
	return msgpack.Unmarshal(data, msg)
}
