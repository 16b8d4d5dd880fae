package rover

import "errors"

var (
	// ErrInvalidConfig is returned when a session is created with unusable thresholds.
	ErrInvalidConfig = errors.New("rover: invalid configuration")

	// ErrImageSize is returned when a frame does not match the configured camera size.
	ErrImageSize = errors.New("rover: frame size does not match camera configuration")

	// ErrNonFinitePose is returned when position, yaw or velocity is NaN or infinite.
	ErrNonFinitePose = errors.New("rover: non-finite pose")

	// ErrNoFrame is returned when telemetry carries no image.
	ErrNoFrame = errors.New("rover: telemetry has no image")
)
