// Package perception runs the per-frame vision pipeline: rectify, classify,
// update the world map, track sample proximity and reduce the frame to
// navigation statistics.
package perception

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/teslashibe/go-rover/internal/log"
	"github.com/teslashibe/go-rover/pkg/geometry"
	"github.com/teslashibe/go-rover/pkg/vision"
	"github.com/teslashibe/go-rover/pkg/worldmap"
)

// Warper reprojects a camera frame to the bird's-eye view.
type Warper interface {
	Warp(img *image.RGBA) (*image.RGBA, error)
}

// Confirmer decides whether a sample mask holds a real sample.
type Confirmer interface {
	Confirm(m *vision.Mask) (bool, error)
}

// Config holds the classification thresholds.
type Config struct {
	Navigable   vision.RGB
	SampleLow   vision.RGB
	SampleHigh  vision.RGB
	GraceFrames int
}

// DefaultConfig returns the simulator-tuned thresholds.
func DefaultConfig() Config {
	return Config{
		Navigable:   vision.DefaultNavigable,
		SampleLow:   vision.DefaultSampleLow,
		SampleHigh:  vision.DefaultSampleHigh,
		GraceFrames: DefaultGraceFrames,
	}
}

// Result describes what one frame contributed.
type Result struct {
	Skipped     bool            // Frame ignored while picking up
	Confirmed   bool            // Sample confirmed this frame
	Near        bool            // Sample proximity after this frame
	Source      Source          // Which mask produced Stats
	Stats       *NavStats       // Statistics the decision policy should use
	SampleCells []geometry.Cell // World cells flagged this frame
}

// Pipeline holds the perception state that persists across frames.
type Pipeline struct {
	cfg       Config
	warper    Warper
	confirmer Confirmer
	world     *worldmap.Map
	samples   *SampleDetector

	stats  *NavStats
	vision *image.RGBA
	logger *slog.Logger
}

// New creates a perception pipeline writing into world.
func New(cfg Config, warper Warper, confirmer Confirmer, world *worldmap.Map) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		warper:    warper,
		confirmer: confirmer,
		world:     world,
		samples:   NewSampleDetector(cfg.GraceFrames),
		logger:    log.Component("perception"),
	}
}

// Process runs one frame through the pipeline. While the rover is picking
// up a sample the frame is ignored and all state is left untouched.
func (p *Pipeline) Process(frame *image.RGBA, pose geometry.Pose, pickingUp bool) (Result, error) {
	if pickingUp {
		return Result{Skipped: true, Near: p.samples.Near(), Stats: p.stats}, nil
	}

	warped, err := p.warper.Warp(frame)
	if err != nil {
		return Result{}, fmt.Errorf("rectify: %w", err)
	}

	navigable := vision.NavigableMask(warped, p.cfg.Navigable)
	obstacle := vision.ObstacleMask(navigable)
	sample := vision.SampleMask(frame, p.cfg.SampleLow, p.cfg.SampleHigh)

	confirmed, err := p.confirmer.Confirm(sample)
	if err != nil {
		return Result{}, fmt.Errorf("confirm sample: %w", err)
	}

	p.vision = vision.VisionImage(obstacle, sample, navigable)

	navX, navY := vision.RoverCoords(navigable)
	obsX, obsY := vision.RoverCoords(obstacle)
	p.world.Update(pose, worldmap.Observation{NavX: navX, NavY: navY, ObsX: obsX, ObsY: obsY})

	res := Result{Confirmed: confirmed}

	var sampleX, sampleY []float64
	if confirmed {
		sampleX, sampleY = vision.RoverCoords(sample)
		res.SampleCells = p.world.MarkSample(pose, sampleX, sampleY)
		p.logger.Debug("sample confirmed", "pixels", len(sampleX), "cells", len(res.SampleCells))
	}

	wasNear := p.samples.Near()
	res.Near = p.samples.Observe(confirmed)
	if wasNear && !res.Near {
		p.logger.Debug("sample lost", "frames_since_seen", p.samples.FramesSinceSeen())
	}

	res.Source = selectSource(confirmed, res.Near)
	switch res.Source {
	case SourceSample:
		p.stats = NewNavStats(sampleX, sampleY)
	case SourceNavigable:
		p.stats = NewNavStats(navX, navY)
	}
	res.Stats = p.stats

	return res, nil
}

// Stats returns the statistics from the most recent update, or nil before the first frame.
func (p *Pipeline) Stats() *NavStats {
	return p.stats
}

// Near reports the sample proximity flag.
func (p *Pipeline) Near() bool {
	return p.samples.Near()
}

// Samples exposes the sample proximity tracker.
func (p *Pipeline) Samples() *SampleDetector {
	return p.samples
}

// VisionImage returns the last debug bitmap, or nil before the first frame.
func (p *Pipeline) VisionImage() *image.RGBA {
	return p.vision
}
