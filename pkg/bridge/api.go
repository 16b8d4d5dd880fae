package bridge

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-rover/pkg/rover"
	"github.com/teslashibe/go-rover/pkg/vision"
)

// ConfigView is the session configuration using the config file's key names.
type ConfigView struct {
	MaxVelocity        float64       `json:"max_velocity"`
	ThrottleSet        float64       `json:"throttle_set"`
	BrakeSet           float64       `json:"brake_set"`
	StopForward        int           `json:"stop_forward"`
	GoForward          int           `json:"go_forward"`
	StuckTimeLimit     int           `json:"stuck_time_limit"`
	RockPixelThreshold int           `json:"rock_pixel_threshold"`
	NavThreshold       [3]uint8      `json:"nav_threshold"`
	SampleLow          [3]uint8      `json:"sample_low"`
	SampleHigh         [3]uint8      `json:"sample_high"`
	SampleGraceFrames  int           `json:"sample_grace_frames"`
	ImageWidth         int           `json:"image_width"`
	ImageHeight        int           `json:"image_height"`
	Source             [4][2]float64 `json:"source"`
	DstSize            float64       `json:"dst_size"`
	BottomOffset       float64       `json:"bottom_offset"`
	MapSize            int           `json:"map_size"`
	MapScale           float64       `json:"map_scale"`
}

// NewConfigView flattens cfg for display.
func NewConfigView(cfg rover.Config) ConfigView {
	rgb := func(c vision.RGB) [3]uint8 { return [3]uint8{c.R, c.G, c.B} }

	v := ConfigView{
		MaxVelocity:        cfg.Decision.MaxVelocity,
		ThrottleSet:        cfg.Decision.ThrottleSet,
		BrakeSet:           cfg.Decision.BrakeSet,
		StopForward:        cfg.Decision.StopForward,
		GoForward:          cfg.Decision.GoForward,
		StuckTimeLimit:     cfg.Decision.StuckTimeLimit,
		RockPixelThreshold: cfg.SamplePixels,
		NavThreshold:       rgb(cfg.Perception.Navigable),
		SampleLow:          rgb(cfg.Perception.SampleLow),
		SampleHigh:         rgb(cfg.Perception.SampleHigh),
		SampleGraceFrames:  cfg.Perception.GraceFrames,
		ImageWidth:         cfg.ImageWidth,
		ImageHeight:        cfg.ImageHeight,
		DstSize:            cfg.DstSize,
		BottomOffset:       cfg.BottomOffset,
		MapSize:            cfg.MapSize,
		MapScale:           cfg.MapScale,
	}
	for i, p := range cfg.Source {
		v.Source[i] = [2]float64{p.X, p.Y}
	}
	return v
}

// registerAPIRoutes registers the HTTP API
func (s *Server) registerAPIRoutes(api fiber.Router) {
	api.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(s.session.Status())
	})

	api.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(NewConfigView(s.session.Config()))
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.GetStats())
	})

	api.Get("/worldmap.png", func(c *fiber.Ctx) error {
		data, err := s.session.WorldMapPNG()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Type("png")
		return c.Send(data)
	})

	api.Get("/vision.png", func(c *fiber.Ctx) error {
		data, err := s.session.VisionPNG()
		if errors.Is(err, vision.ErrEmptyImage) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no frame processed yet"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Type("png")
		return c.Send(data)
	})

	api.Get("/metrics", func(c *fiber.Ctx) error {
		st := s.GetStats()
		m := s.session.Status().Map
		c.Type("txt")
		return c.SendString(fmt.Sprintf(`# HELP rover_telemetry_received Total telemetry messages received
# TYPE rover_telemetry_received counter
rover_telemetry_received %d

# HELP rover_commands_sent Total command messages sent
# TYPE rover_commands_sent counter
rover_commands_sent %d

# HELP rover_errors_sent Total error replies sent
# TYPE rover_errors_sent counter
rover_errors_sent %d

# HELP rover_map_mapped_fraction Fraction of world cells with terrain evidence
# TYPE rover_map_mapped_fraction gauge
rover_map_mapped_fraction %g

# HELP rover_map_sample_cells World cells flagged as samples
# TYPE rover_map_sample_cells gauge
rover_map_sample_cells %d
`, st.TelemetryReceived, st.CommandsSent, st.ErrorsSent, m.MappedFraction, m.SampleCells))
	})
}
