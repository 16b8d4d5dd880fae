package rover

import (
	"fmt"

	"github.com/teslashibe/go-rover/pkg/decision"
	"github.com/teslashibe/go-rover/pkg/perception"
	"github.com/teslashibe/go-rover/pkg/vision"
)

// Config holds every threshold the autonomy loop needs. It is fixed for the
// life of a session.
type Config struct {
	Decision   decision.Config
	Perception perception.Config

	// Sample confirmation
	SamplePixels int // Smallest accepted sample blob (pixels, exclusive)

	// Camera
	ImageWidth   int
	ImageHeight  int
	Source       [4]vision.Point // Ground trapezoid in the camera frame
	DstSize      float64         // Half side of the rectified calibration square
	BottomOffset float64         // Camera-to-rover-origin offset in rectified pixels

	// World map
	MapSize  int     // Cells per side
	MapScale float64 // Rover pixels per world cell
}

// DefaultConfig returns the recommended configuration for the simulator.
func DefaultConfig() Config {
	return Config{
		Decision:     decision.DefaultConfig(),
		Perception:   perception.DefaultConfig(),
		SamplePixels: vision.DefaultSamplePixels,

		ImageWidth:   320,
		ImageHeight:  160,
		Source:       vision.DefaultSource,
		DstSize:      5,
		BottomOffset: 6,

		MapSize:  200,
		MapScale: 10,
	}
}

// CautiousConfig returns a configuration for slower driving that gives up
// on a stuck position sooner.
func CautiousConfig() Config {
	cfg := DefaultConfig()
	cfg.Decision.MaxVelocity = 1.0
	cfg.Decision.ThrottleSet = 0.1
	cfg.Decision.StopForward = 100
	cfg.Decision.GoForward = 700
	cfg.Decision.StuckTimeLimit = 50
	return cfg
}

// Validate rejects configurations the loop cannot run with.
func (c Config) Validate() error {
	d := c.Decision
	switch {
	case d.MaxVelocity <= 0:
		return fmt.Errorf("%w: max_velocity must be positive, got %v", ErrInvalidConfig, d.MaxVelocity)
	case d.ThrottleSet < 0:
		return fmt.Errorf("%w: throttle_set must not be negative, got %v", ErrInvalidConfig, d.ThrottleSet)
	case d.BrakeSet < 0:
		return fmt.Errorf("%w: brake_set must not be negative, got %v", ErrInvalidConfig, d.BrakeSet)
	case d.StopForward < 0:
		return fmt.Errorf("%w: stop_forward must not be negative, got %d", ErrInvalidConfig, d.StopForward)
	case d.GoForward < 0:
		return fmt.Errorf("%w: go_forward must not be negative, got %d", ErrInvalidConfig, d.GoForward)
	case d.StuckTimeLimit < 0:
		return fmt.Errorf("%w: stuck_time_limit must not be negative, got %d", ErrInvalidConfig, d.StuckTimeLimit)
	case c.SamplePixels < 0:
		return fmt.Errorf("%w: rock_pixel_threshold must not be negative, got %d", ErrInvalidConfig, c.SamplePixels)
	case c.Perception.GraceFrames < 0:
		return fmt.Errorf("%w: sample_grace_frames must not be negative, got %d", ErrInvalidConfig, c.Perception.GraceFrames)
	case c.ImageWidth <= 0 || c.ImageHeight <= 0:
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalidConfig, c.ImageWidth, c.ImageHeight)
	case c.DstSize <= 0:
		return fmt.Errorf("%w: dst_size must be positive, got %v", ErrInvalidConfig, c.DstSize)
	case c.MapSize <= 0:
		return fmt.Errorf("%w: map_size must be positive, got %d", ErrInvalidConfig, c.MapSize)
	case c.MapScale <= 0:
		return fmt.Errorf("%w: map_scale must be positive, got %v", ErrInvalidConfig, c.MapScale)
	}
	return nil
}
