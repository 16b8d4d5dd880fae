// Package rover owns the per-run autonomy state and advances it one
// simulator tick at a time.
package rover

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-rover/internal/log"
	"github.com/teslashibe/go-rover/pkg/decision"
	"github.com/teslashibe/go-rover/pkg/geometry"
	"github.com/teslashibe/go-rover/pkg/perception"
	"github.com/teslashibe/go-rover/pkg/vision"
	"github.com/teslashibe/go-rover/pkg/worldmap"
)

// Telemetry is the per-tick input from the simulator bridge.
type Telemetry struct {
	Image     *image.RGBA
	X, Y      float64 // World position
	Yaw       float64 // Degrees
	Velocity  float64
	PickingUp bool
}

// Output is the per-tick command set sent back to the bridge.
type Output struct {
	decision.Command
	Tick uint64 `json:"tick"`
}

// Session is the state of one autonomous run: world map, perception state,
// decision policy and the previous position. Step serializes ticks.
type Session struct {
	ID string

	cfg        Config
	world      *worldmap.Map
	perception *perception.Pipeline
	policy     *decision.Policy
	closer     func() error

	lastPose *geometry.Pose
	lastTel  Telemetry
	lastOut  Output
	ticks    uint64
	started  time.Time

	mu     sync.Mutex
	logger *slog.Logger
}

// NewSession validates cfg and creates a session using the OpenCV
// rectifier and sample confirmer.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dst := vision.Destination(cfg.ImageWidth, cfg.ImageHeight, cfg.DstSize, cfg.BottomOffset)
	rect, err := vision.NewRectifier(cfg.ImageWidth, cfg.ImageHeight, cfg.Source, dst)
	if err != nil {
		return nil, fmt.Errorf("create rectifier: %w", err)
	}

	s, err := NewSessionWith(cfg, rect, vision.NewSampleConfirmer(cfg.SamplePixels))
	if err != nil {
		rect.Close()
		return nil, err
	}
	s.closer = rect.Close
	return s, nil
}

// NewSessionWith creates a session with caller-supplied vision backends.
func NewSessionWith(cfg Config, warper perception.Warper, confirmer perception.Confirmer) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	world := worldmap.New(cfg.MapSize, cfg.MapScale)

	s := &Session{
		ID:         id,
		cfg:        cfg,
		world:      world,
		perception: perception.New(cfg.Perception, warper, confirmer, world),
		policy:     decision.NewPolicy(cfg.Decision),
		started:    time.Now(),
		logger:     log.With("session", id),
	}

	s.logger.Info("session started",
		"image", fmt.Sprintf("%dx%d", cfg.ImageWidth, cfg.ImageHeight),
		"map_size", cfg.MapSize,
		"stop_forward", cfg.Decision.StopForward,
		"go_forward", cfg.Decision.GoForward)
	return s, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// World returns the session's world map.
func (s *Session) World() *worldmap.Map {
	return s.world
}

// Step runs perception and decision for one tick. Invalid telemetry is
// rejected before any state changes.
func (s *Session) Step(t Telemetry) (Output, error) {
	if err := s.checkTelemetry(t); err != nil {
		return Output{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pose := geometry.Pose{X: t.X, Y: t.Y, Yaw: t.Yaw}

	res, err := s.perception.Process(t.Image, pose, t.PickingUp)
	if err != nil {
		return Output{}, fmt.Errorf("perception: %w", err)
	}

	cmd := s.policy.Decide(decision.Input{
		Stats:      res.Stats,
		Velocity:   t.Velocity,
		Position:   pose,
		Previous:   s.lastPose,
		NearSample: res.Near,
		PickingUp:  t.PickingUp,
	})

	s.ticks++
	s.lastPose = &pose
	s.lastTel = t
	s.lastOut = Output{Command: cmd, Tick: s.ticks}

	if res.Confirmed {
		s.logger.Debug("sample in view", "tick", s.ticks, "cells", len(res.SampleCells))
	}
	if cmd.SendPickup {
		s.logger.Info("pickup requested", "tick", s.ticks, "x", t.X, "y", t.Y)
	}

	return s.lastOut, nil
}

func (s *Session) checkTelemetry(t Telemetry) error {
	if t.Image == nil {
		return ErrNoFrame
	}
	size := t.Image.Bounds().Size()
	if size.X != s.cfg.ImageWidth || size.Y != s.cfg.ImageHeight {
		return fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrImageSize, size.X, size.Y, s.cfg.ImageWidth, s.cfg.ImageHeight)
	}
	for _, v := range []float64{t.X, t.Y, t.Yaw, t.Velocity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: x=%v y=%v yaw=%v velocity=%v", ErrNonFinitePose, t.X, t.Y, t.Yaw, t.Velocity)
		}
	}
	return nil
}

// Close releases the vision backends.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("session closed", "ticks", s.ticks, "uptime", time.Since(s.started).Round(time.Second))
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
