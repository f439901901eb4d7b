// Package protocol defines the wayfinder data model and the WebSocket
// envelope used to stream pipeline events to UI clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Pipeline → UI messages
	TypeDetections   MessageType = "detections"   // DetectionResult
	TypeTrack        MessageType = "track"        // TrackUpdate
	TypeGuidance     MessageType = "guidance"     // SpatialGuidance
	TypeAnnouncement MessageType = "announcement" // FusionAnnouncement
	TypeScene        MessageType = "scene"        // SceneDescription
	TypeFrame        MessageType = "frame"        // Frame metadata

	// UI → Pipeline messages
	TypeControl MessageType = "control" // Control command

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// TypeOf returns the message type for a pipeline event value.
func TypeOf(event any) (MessageType, bool) {
	switch event.(type) {
	case DetectionResult, *DetectionResult:
		return TypeDetections, true
	case TrackUpdate, *TrackUpdate:
		return TypeTrack, true
	case SpatialGuidance, *SpatialGuidance:
		return TypeGuidance, true
	case FusionAnnouncement, *FusionAnnouncement:
		return TypeAnnouncement, true
	case SceneDescription, *SceneDescription:
		return TypeScene, true
	case FrameMeta, *FrameMeta:
		return TypeFrame, true
	}
	return "", false
}

// NewEventMessage wraps a pipeline event in a Message of the matching type.
func NewEventMessage(event any) (*Message, error) {
	t, ok := TypeOf(event)
	if !ok {
		return nil, fmt.Errorf("unsupported event type %T", event)
	}
	return NewMessage(t, event)
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}
