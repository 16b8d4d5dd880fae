package protocol

import (
	"encoding/base64"
	"fmt"
	"time"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewTelemetryMessage creates a telemetry message from an encoded camera frame
func NewTelemetryMessage(imageData []byte, x, y, yaw, velocity float64, pickingUp bool, frameID uint64) (*Message, error) {
	return NewMessage(TypeTelemetry, TelemetryData{
		Image:     base64.StdEncoding.EncodeToString(imageData),
		X:         x,
		Y:         y,
		Yaw:       yaw,
		Velocity:  velocity,
		PickingUp: pickingUp,
		FrameID:   frameID,
	})
}

// NewCommandMessage creates a command message
func NewCommandMessage(cmd CommandData) (*Message, error) {
	return NewMessage(TypeCommand, cmd)
}

// NewErrorMessage creates an error reply
func NewErrorMessage(err error, frameID uint64) (*Message, error) {
	return NewMessage(TypeError, ErrorData{
		Message: err.Error(),
		FrameID: frameID,
	})
}

// NewStatusMessage wraps any JSON-serializable status snapshot
func NewStatusMessage(status interface{}) (*Message, error) {
	return NewMessage(TypeStatus, status)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id, Timestamp: time.Now().UnixMilli()})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

func (m *Message) expect(t MessageType) error {
	if m.Type != t {
		return fmt.Errorf("%w: got %q, want %q", ErrUnexpectedType, m.Type, t)
	}
	return nil
}

// GetTelemetryData extracts telemetry from a message
func (m *Message) GetTelemetryData() (*TelemetryData, error) {
	if err := m.expect(TypeTelemetry); err != nil {
		return nil, err
	}
	var data TelemetryData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DecodeImage decodes the base64 image data
func (t *TelemetryData) DecodeImage() ([]byte, error) {
	return base64.StdEncoding.DecodeString(t.Image)
}

// GetCommandData extracts actuator commands from a message
func (m *Message) GetCommandData() (*CommandData, error) {
	if err := m.expect(TypeCommand); err != nil {
		return nil, err
	}
	var data CommandData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts an error reply from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	if err := m.expect(TypeError); err != nil {
		return nil, err
	}
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	if err := m.expect(TypePing); err != nil {
		return nil, err
	}
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	if err := m.expect(TypePong); err != nil {
		return nil, err
	}
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
