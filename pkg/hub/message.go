// Package hub provides a websocket broadcast hub
// using the channel-based fan-out pattern.
package hub

import "github.com/teslashibe/go-wayfinder/pkg/protocol"

// MessageType indicates the websocket message format
type MessageType int

const (
	// JSONMessage is a JSON-encoded message
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (e.g., JPEG frames)
	BinaryMessage
)

// Message represents a message to be broadcast to clients
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage creates a JSON message from pre-encoded bytes
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage creates a binary message
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

// NewEventMessage wraps a pipeline event in the {type, ts, data} envelope.
func NewEventMessage(event any) (Message, error) {
	env, err := protocol.NewEventMessage(event)
	if err != nil {
		return Message{}, err
	}
	b, err := env.Bytes()
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(b), nil
}
