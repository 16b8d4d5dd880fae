package rover

import (
	"image"
	"time"

	"github.com/teslashibe/go-rover/pkg/vision"
	"github.com/teslashibe/go-rover/pkg/worldmap"
)

// Status is a snapshot of the session for dashboards.
type Status struct {
	SessionID       string         `json:"session_id"`
	Ticks           uint64         `json:"ticks"`
	Uptime          float64        `json:"uptime_s"`
	X               float64        `json:"x"`
	Y               float64        `json:"y"`
	Yaw             float64        `json:"yaw"`
	Velocity        float64        `json:"velocity"`
	PickingUp       bool           `json:"picking_up"`
	Output          Output         `json:"output"`
	StuckCount      int            `json:"stuck_count"`
	Stuck           bool           `json:"stuck"`
	NearSample      bool           `json:"near_sample"`
	FramesSinceSeen int            `json:"frames_since_seen"`
	NavAngles       int            `json:"nav_angles"`
	MeanAngle       float64        `json:"mean_angle"`
	MeanDist        float64        `json:"mean_dist"`
	Map             worldmap.Stats `json:"map"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.perception.Stats()
	mean, _ := stats.MeanAngle()
	stuck := s.policy.Stuck()

	return Status{
		SessionID:       s.ID,
		Ticks:           s.ticks,
		Uptime:          time.Since(s.started).Seconds(),
		X:               s.lastTel.X,
		Y:               s.lastTel.Y,
		Yaw:             s.lastTel.Yaw,
		Velocity:        s.lastTel.Velocity,
		PickingUp:       s.lastTel.PickingUp,
		Output:          s.lastOut,
		StuckCount:      stuck.Count,
		Stuck:           stuck.Stuck,
		NearSample:      s.perception.Near(),
		FramesSinceSeen: s.perception.Samples().FramesSinceSeen(),
		NavAngles:       stats.Len(),
		MeanAngle:       mean,
		MeanDist:        stats.MeanDist(),
		Map:             s.world.Stats(),
	}
}

// WorldImage renders the world map bitmap.
func (s *Session) WorldImage() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Image()
}

// VisionImage returns the last obstacle/sample/navigable debug bitmap, or
// nil before the first processed frame.
func (s *Session) VisionImage() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perception.VisionImage()
}

// WorldMapPNG encodes the world map for display.
func (s *Session) WorldMapPNG() ([]byte, error) {
	return vision.EncodePNG(s.WorldImage())
}

// VisionPNG encodes the last debug bitmap for display.
func (s *Session) VisionPNG() ([]byte, error) {
	img := s.VisionImage()
	if img == nil {
		return nil, vision.ErrEmptyImage
	}
	return vision.EncodePNG(img)
}
