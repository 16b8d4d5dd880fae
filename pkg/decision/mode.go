package decision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode is the rover's behavior mode.
type Mode int

const (
	ModeForward Mode = iota
	ModeStop
)

func (m Mode) String() string {
	switch m {
	case ModeForward:
		return "forward"
	case ModeStop:
		return "stop"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "forward":
		return ModeForward, nil
	case "stop":
		return ModeStop, nil
	default:
		return ModeForward, fmt.Errorf("unknown mode %q", value)
	}
}

// MarshalJSON encodes the mode by name.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode name.
func (m *Mode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
