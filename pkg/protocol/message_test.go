package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "telemetry message",
			msgType: TypeTelemetry,
			data:    TelemetryData{X: 99.7, Y: 85.2, Yaw: 12},
			wantErr: false,
		},
		{
			name:    "command message",
			msgType: TypeCommand,
			data:    CommandData{Throttle: 0.2, Mode: "forward"},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeStatus,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestTelemetryRoundTrip(t *testing.T) {
	jpegData := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10} // Fake JPEG header

	msg, err := NewTelemetryMessage(jpegData, 99.7, 85.2, 270.5, 1.3, true, 42)
	if err != nil {
		t.Fatalf("NewTelemetryMessage() error = %v", err)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeTelemetry {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeTelemetry)
	}

	tel, err := parsed.GetTelemetryData()
	if err != nil {
		t.Fatalf("GetTelemetryData() error = %v", err)
	}
	if tel.X != 99.7 || tel.Y != 85.2 || tel.Yaw != 270.5 {
		t.Errorf("Pose = (%v, %v, %v), want (99.7, 85.2, 270.5)", tel.X, tel.Y, tel.Yaw)
	}
	if tel.Velocity != 1.3 {
		t.Errorf("Velocity = %v, want 1.3", tel.Velocity)
	}
	if !tel.PickingUp {
		t.Error("PickingUp should be true")
	}
	if tel.FrameID != 42 {
		t.Errorf("FrameID = %v, want 42", tel.FrameID)
	}

	decoded, err := tel.DecodeImage()
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}
	if len(decoded) != len(jpegData) {
		t.Errorf("Decoded length = %v, want %v", len(decoded), len(jpegData))
	}
}

func TestCommandMessage(t *testing.T) {
	msg, err := NewCommandMessage(CommandData{
		Throttle:   0.2,
		Steer:      -15,
		Mode:       "forward",
		SendPickup: true,
		FrameID:    7,
	})
	if err != nil {
		t.Fatalf("NewCommandMessage() error = %v", err)
	}

	cmd, err := msg.GetCommandData()
	if err != nil {
		t.Fatalf("GetCommandData() error = %v", err)
	}
	if cmd.Steer != -15 {
		t.Errorf("Steer = %v, want -15", cmd.Steer)
	}
	if cmd.Mode != "forward" {
		t.Errorf("Mode = %v, want forward", cmd.Mode)
	}
	if !cmd.SendPickup {
		t.Error("SendPickup should be true")
	}
}

func TestErrorMessage(t *testing.T) {
	msg, err := NewErrorMessage(errors.New("bad frame"), 3)
	if err != nil {
		t.Fatalf("NewErrorMessage() error = %v", err)
	}

	data, err := msg.GetErrorData()
	if err != nil {
		t.Fatalf("GetErrorData() error = %v", err)
	}
	if data.Message != "bad frame" || data.FrameID != 3 {
		t.Errorf("ErrorData = %+v", data)
	}
}

func TestGetterTypeMismatch(t *testing.T) {
	msg, _ := NewCommandMessage(CommandData{})

	if _, err := msg.GetTelemetryData(); !errors.Is(err, ErrUnexpectedType) {
		t.Errorf("Expected ErrUnexpectedType, got %v", err)
	}

	empty := &Message{Type: TypeTelemetry}
	if _, err := empty.GetTelemetryData(); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestPingPongMessage(t *testing.T) {
	pingMsg, err := NewPingMessage("test-123")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	pingData, err := pingMsg.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pingData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pingData.ID)
	}
	if pingData.Timestamp == 0 {
		t.Error("Ping timestamp should be set")
	}

	now := time.Now().UnixMilli()
	pongMsg, err := NewPongMessage("test-123", pingData.Timestamp, now)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}

	pongData, err := pongMsg.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pongData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pongData.ID)
	}
	if pongData.LatencyMs < 0 {
		t.Errorf("LatencyMs = %v, should be >= 0", pongData.LatencyMs)
	}
}

func TestParseInvalidMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "invalid json",
			input:   "not json",
			wantErr: true,
		},
		{
			name:    "missing type",
			input:   "{}",
			wantErr: true,
		},
		{
			name:    "valid message",
			input:   `{"type":"ping","ts":1234567890}`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageJSON(t *testing.T) {
	msg, _ := NewCommandMessage(CommandData{Brake: 10, Mode: "stop"})

	bytes, _ := msg.Bytes()

	var parsed map[string]interface{}
	if err := json.Unmarshal(bytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal as map: %v", err)
	}

	if parsed["type"] != "command" {
		t.Errorf("type = %v, want command", parsed["type"])
	}
	if _, ok := parsed["ts"]; !ok {
		t.Error("ts field should be present")
	}
	data, ok := parsed["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data field should be an object")
	}
	if data["brake"] != float64(10) {
		t.Errorf("brake = %v, want 10", data["brake"])
	}
}

func BenchmarkParseTelemetry(b *testing.B) {
	msg, _ := NewTelemetryMessage(make([]byte, 20*1024), 1, 2, 3, 4, false, 1)
	bytes, _ := msg.Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, _ := ParseMessage(bytes)
		m.GetTelemetryData()
	}
}
