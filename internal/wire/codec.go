package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrEmptyPayload is returned when a frame carries no bytes at all.
var ErrEmptyPayload = errors.New("wire: empty payload")

// Codec converts envelopes to and from frame payloads.
type Codec interface {
	// Name is the identifier clients use to select the codec.
	Name() string
	// Binary reports whether frames should be sent as binary messages.
	Binary() bool
	Marshal(env Envelope) ([]byte, error)
	Unmarshal(data []byte) (Envelope, error)
}

const (
	// CodecJSON is the default text codec.
	CodecJSON = "json"
	// CodecMsgPack is the binary msgpack codec.
	CodecMsgPack = "msgpack"
)

var (
	// JSON encodes envelopes as JSON text frames.
	JSON Codec = jsonCodec{}
	// MsgPack encodes envelopes as msgpack binary frames.
	MsgPack Codec = msgpackCodec{}
)

// CodecByName resolves a codec name. The empty name selects JSON.
func CodecByName(name string) (Codec, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecJSON:
		return JSON, true
	case CodecMsgPack:
		return MsgPack, true
	}
	return nil, false
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecJSON }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Marshal(env Envelope) ([]byte, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", env.Type, err)
	}
	return raw, nil
}

func (jsonCodec) Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if len(bytes.TrimSpace(data)) == 0 {
		return env, ErrEmptyPayload
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode json envelope: %w", err)
	}
	return env, nil
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return CodecMsgPack }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Marshal(env Envelope) ([]byte, error) {
	raw, err := msgpack.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", env.Type, err)
	}
	return raw, nil
}

func (msgpackCodec) Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if len(data) == 0 {
		return env, ErrEmptyPayload
	}
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode msgpack envelope: %w", err)
	}
	return env, nil
}
