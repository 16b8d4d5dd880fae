// Package decision turns navigation statistics and telemetry into drive
// commands with a two-state (forward/stop) policy.
package decision

import (
	"log/slog"
	"math"

	"github.com/teslashibe/go-rover/internal/log"
	"github.com/teslashibe/go-rover/pkg/geometry"
	"github.com/teslashibe/go-rover/pkg/perception"
)

// Steering limits and motion thresholds, degrees and simulator units.
const (
	CruiseSteerMin = -20.0 // Forward steering range; biased left
	CruiseSteerMax = 15.0
	ApproachSteer  = 30.0 // ±range while closing on a sample
	ResumeSteer    = 40.0 // ±range when leaving stop mode
	SearchSteer    = -20.0
	ReverseSteer   = -180.0
	MaxSteer       = 180.0

	StopVelocity      = 0.2  // Keep braking above this speed in stop mode
	StuckVelocity     = 0.01 // Below this the rover may be stuck
	StuckDisplacement = 0.01 // Position change per tick below which the rover is stuck
)

// Config holds the policy thresholds.
type Config struct {
	MaxVelocity    float64 // Cruise throttle only below this speed
	ThrottleSet    float64 // Cruise throttle
	BrakeSet       float64 // Braking force
	StopForward    int     // Stop when fewer navigable angles than this
	GoForward      int     // Resume when at least this many navigable angles
	StuckTimeLimit int     // Stuck ticks tolerated before recovery
}

// DefaultConfig returns the simulator-tuned thresholds.
func DefaultConfig() Config {
	return Config{
		MaxVelocity:    2.0,
		ThrottleSet:    0.2,
		BrakeSet:       10,
		StopForward:    50,
		GoForward:      500,
		StuckTimeLimit: 100,
	}
}

// Input is everything the policy sees in one tick.
type Input struct {
	Stats      *perception.NavStats // nil until the first perception update
	Velocity   float64
	Position   geometry.Pose
	Previous   *geometry.Pose // Position at the previous tick, nil on the first
	NearSample bool
	PickingUp  bool
}

// Command is the actuator output of one tick.
type Command struct {
	Throttle   float64 `json:"throttle"`
	Brake      float64 `json:"brake"`
	Steer      float64 `json:"steer"` // Degrees, [-180, 180]
	Mode       Mode    `json:"mode"`
	SendPickup bool    `json:"send_pickup"`
}

// StuckTracker counts consecutive ticks without motion.
type StuckTracker struct {
	Count int
	Stuck bool
}

// Policy is the forward/stop state machine. It is not safe for concurrent use.
type Policy struct {
	cfg   Config
	mode  Mode
	stuck StuckTracker

	logger *slog.Logger
}

// NewPolicy creates a policy starting in forward mode.
func NewPolicy(cfg Config) *Policy {
	return &Policy{
		cfg:    cfg,
		mode:   ModeForward,
		logger: log.Component("decision"),
	}
}

// Mode returns the current behavior mode.
func (p *Policy) Mode() Mode {
	return p.mode
}

// Stuck returns the stuck tracker state.
func (p *Policy) Stuck() StuckTracker {
	return p.stuck
}

// Decide computes the commands for one tick and advances the mode.
func (p *Policy) Decide(in Input) Command {
	prev := p.mode

	var cmd Command
	switch {
	case in.Stats == nil:
		// No vision yet: drive straight.
		cmd = Command{Throttle: p.cfg.ThrottleSet}
	case p.mode == ModeForward:
		cmd = p.forward(in)
	default:
		cmd = p.stop(in)
	}

	cmd.Steer = geometry.Clamp(cmd.Steer, -MaxSteer, MaxSteer)
	cmd.Mode = p.mode
	cmd.SendPickup = in.NearSample && !in.PickingUp

	if p.mode != prev {
		p.logger.Debug("mode change",
			"from", prev.String(),
			"to", p.mode.String(),
			"angles", in.Stats.Len(),
			"velocity", in.Velocity,
			"stuck", p.stuck.Stuck)
	}
	return cmd
}

func (p *Policy) forward(in Input) Command {
	n := in.Stats.Len()
	mean, ok := in.Stats.MeanAngle()
	if !ok || (n < p.cfg.StopForward && !in.NearSample) {
		p.mode = ModeStop
		return Command{Brake: p.cfg.BrakeSet}
	}

	var cmd Command
	if in.Velocity < p.cfg.MaxVelocity && !in.NearSample {
		cmd.Throttle = p.cfg.ThrottleSet
	}
	if in.NearSample {
		cmd.Steer = geometry.Clamp(mean, -ApproachSteer, ApproachSteer)
	} else {
		cmd.Steer = geometry.Clamp(mean, CruiseSteerMin, CruiseSteerMax)
	}

	if p.trackStuck(in) {
		p.mode = ModeStop
		cmd.Steer = ReverseSteer
		p.logger.Info("stuck, forcing recovery turn",
			"x", in.Position.X, "y", in.Position.Y, "limit", p.cfg.StuckTimeLimit)
	}
	return cmd
}

// trackStuck updates the stuck tracker and reports whether the limit was
// just exceeded.
func (p *Policy) trackStuck(in Input) bool {
	if in.PickingUp || in.Previous == nil {
		p.stuck.Stuck = false
		return false
	}
	if in.Velocity >= StuckVelocity {
		p.stuck = StuckTracker{}
		return false
	}
	if math.Hypot(in.Position.X-in.Previous.X, in.Position.Y-in.Previous.Y) >= StuckDisplacement {
		p.stuck = StuckTracker{}
		return false
	}

	p.stuck.Count++
	if p.stuck.Count > p.cfg.StuckTimeLimit {
		p.stuck = StuckTracker{Stuck: true}
		return true
	}
	p.stuck.Stuck = false
	return false
}

func (p *Policy) stop(in Input) Command {
	if in.Velocity > StopVelocity {
		return Command{Brake: p.cfg.BrakeSet}
	}

	mean, ok := in.Stats.MeanAngle()
	if !ok || in.Stats.Len() < p.cfg.GoForward {
		return Command{Steer: SearchSteer}
	}

	p.mode = ModeForward
	cmd := Command{
		Throttle: p.cfg.ThrottleSet,
		Steer:    geometry.Clamp(mean, -ResumeSteer, ResumeSteer),
	}
	if p.stuck.Stuck {
		cmd.Steer = ReverseSteer
	}
	return cmd
}
