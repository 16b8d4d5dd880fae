package perception

import (
	"math"

	"github.com/teslashibe/go-rover/pkg/geometry"
)

// NavStats is the polar description of the pixels the rover should steer by.
// Dists and Angles are parallel; angles are radians, positive to the left.
type NavStats struct {
	Dists  []float64
	Angles []float64
}

// NewNavStats converts rover-centric points to polar statistics.
func NewNavStats(xs, ys []float64) *NavStats {
	d, a := geometry.PolarSlice(xs, ys)
	return &NavStats{Dists: d, Angles: a}
}

// Len returns the number of pixels described. A nil receiver has none.
func (s *NavStats) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Angles)
}

// MeanAngle returns the mean steering angle in degrees.
// ok is false when there are no angles to average.
func (s *NavStats) MeanAngle() (deg float64, ok bool) {
	if s.Len() == 0 {
		return 0, false
	}
	sum := 0.0
	for _, a := range s.Angles {
		sum += a
	}
	mean := geometry.Degrees(sum / float64(len(s.Angles)))
	if math.IsNaN(mean) {
		return 0, false
	}
	return mean, true
}

// MeanDist returns the mean pixel distance, or 0 with no pixels.
func (s *NavStats) MeanDist() float64 {
	if s.Len() == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range s.Dists {
		sum += d
	}
	return sum / float64(len(s.Dists))
}

// Source says which mask produced the statistics of a frame.
type Source int

const (
	SourceNone      Source = iota // Not recomputed: previous statistics kept
	SourceSample                  // Confirmed sample pixels
	SourceNavigable               // Navigable terrain pixels
)

func (s Source) String() string {
	switch s {
	case SourceSample:
		return "sample"
	case SourceNavigable:
		return "navigable"
	default:
		return "stale"
	}
}

// selectSource picks the pixel set to report for a frame. While a sample
// is near but not confirmed this frame the previous statistics are kept.
func selectSource(confirmed, near bool) Source {
	switch {
	case confirmed:
		return SourceSample
	case !near:
		return SourceNavigable
	default:
		return SourceNone
	}
}
