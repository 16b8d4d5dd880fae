// Package protocol defines the WebSocket message types exchanged between the
// simulator bridge and the autonomy core.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Simulator → core
	TypeTelemetry MessageType = "telemetry" // Camera frame and rover state

	// Core → simulator
	TypeCommand MessageType = "command" // Actuator commands
	TypeError   MessageType = "error"   // Rejected message

	// Core → dashboard
	TypeStatus MessageType = "status" // Session snapshot

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
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

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return ErrNoData
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
	if msg.Type == "" {
		return nil, ErrMissingType
	}
	return &msg, nil
}

// =============================================================================
// Simulator → Core
// =============================================================================

// TelemetryData is one simulator tick: the front camera frame plus the rover
// state at the time it was taken.
type TelemetryData struct {
	Image     string  `json:"image"`  // base64 encoded JPEG or PNG
	X         float64 `json:"x"`      // World position
	Y         float64 `json:"y"`      // World position
	Yaw       float64 `json:"yaw"`    // Degrees
	Velocity  float64 `json:"velocity"`
	PickingUp bool    `json:"picking_up"`
	FrameID   uint64  `json:"frame_id,omitempty"`
}

// =============================================================================
// Core → Simulator
// =============================================================================

// CommandData contains the actuator commands for one tick
type CommandData struct {
	Throttle   float64 `json:"throttle"`
	Brake      float64 `json:"brake"`
	Steer      float64 `json:"steer"` // Degrees, positive left
	Mode       string  `json:"mode"`  // "forward", "stop"
	SendPickup bool    `json:"send_pickup"`
	FrameID    uint64  `json:"frame_id,omitempty"`
}

// ErrorData reports why a message was rejected
type ErrorData struct {
	Message string `json:"message"`
	FrameID uint64 `json:"frame_id,omitempty"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
