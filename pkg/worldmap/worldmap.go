// Package worldmap accumulates per-frame terrain observations into a
// persistent occupancy grid.
package worldmap

import (
	"fmt"
	"image"
	"sync"

	"github.com/teslashibe/go-rover/pkg/geometry"
)

// Channel indexes an evidence layer of the map.
type Channel int

const (
	Obstacle Channel = iota
	Sample
	Navigable
	numChannels
)

func (c Channel) String() string {
	switch c {
	case Obstacle:
		return "obstacle"
	case Sample:
		return "sample"
	case Navigable:
		return "navigable"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Full is the intensity written for an observed cell.
const Full uint8 = 255

// Map is a square grid of three evidence channels indexed [y][x].
// A cell with navigable evidence never keeps obstacle evidence.
type Map struct {
	size  int
	scale float64

	cells   []uint8 // size*size*numChannels, row-major
	flagged []bool  // confirmed sample locations, kept apart from terrain evidence

	mu sync.RWMutex
}

// New creates an empty map of size×size cells. scale is the number of
// rover-centric pixels per world cell.
func New(size int, scale float64) *Map {
	return &Map{
		size:    size,
		scale:   scale,
		cells:   make([]uint8, size*size*int(numChannels)),
		flagged: make([]bool, size*size),
	}
}

// Size returns the side length of the grid.
func (m *Map) Size() int {
	return m.size
}

// Scale returns the rover pixels per world cell.
func (m *Map) Scale() float64 {
	return m.scale
}

// At returns the evidence in a channel for cell (x, y).
func (m *Map) At(x, y int, ch Channel) uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cells[m.index(x, y, ch)]
}

// Flagged reports whether a sample was confirmed at cell (x, y).
func (m *Map) Flagged(x, y int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flagged[y*m.size+x]
}

// Observation is one frame of rover-centric terrain points.
type Observation struct {
	NavX, NavY []float64
	ObsX, ObsY []float64
}

// Update places a frame's navigable and obstacle points in the world and
// then clears obstacle evidence under every navigable cell.
func (m *Map) Update(pose geometry.Pose, obs Observation) {
	nav := geometry.WorldSlice(obs.NavX, obs.NavY, pose, m.size, m.scale)
	blocked := geometry.WorldSlice(obs.ObsX, obs.ObsY, pose, m.size, m.scale)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range nav {
		m.cells[m.index(c.X, c.Y, Navigable)] = Full
	}
	for _, c := range blocked {
		m.cells[m.index(c.X, c.Y, Obstacle)] = Full
	}
	m.enforce()
}

// MarkSample flags the world cells under a confirmed sample.
func (m *Map) MarkSample(pose geometry.Pose, xs, ys []float64) []geometry.Cell {
	cells := geometry.WorldSlice(xs, ys, pose, m.size, m.scale)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range cells {
		m.cells[m.index(c.X, c.Y, Sample)] = Full
		m.flagged[c.Y*m.size+c.X] = true
	}
	return cells
}

// Check returns an error naming the first cell that holds both navigable
// and obstacle evidence.
func (m *Map) Check() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for y := 0; y < m.size; y++ {
		for x := 0; x < m.size; x++ {
			if m.cells[m.index(x, y, Navigable)] > 0 && m.cells[m.index(x, y, Obstacle)] > 0 {
				return fmt.Errorf("%w at (%d, %d)", ErrInconsistentCell, x, y)
			}
		}
	}
	return nil
}

// Stats summarizes map coverage.
type Stats struct {
	NavigableCells int     `json:"navigable_cells"`
	ObstacleCells  int     `json:"obstacle_cells"`
	SampleCells    int     `json:"sample_cells"`
	MappedFraction float64 `json:"mapped_fraction"` // Cells with any terrain evidence / total
}

// Stats counts cells with evidence in each channel.
func (m *Map) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Stats
	mapped := 0
	for i := 0; i < m.size*m.size; i++ {
		base := i * int(numChannels)
		nav := m.cells[base+int(Navigable)] > 0
		obs := m.cells[base+int(Obstacle)] > 0
		if nav {
			s.NavigableCells++
		}
		if obs {
			s.ObstacleCells++
		}
		if m.flagged[i] {
			s.SampleCells++
		}
		if nav || obs {
			mapped++
		}
	}
	s.MappedFraction = float64(mapped) / float64(m.size*m.size)
	return s
}

// Image renders the map for display with world y increasing upward:
// red obstacle, green sample, blue navigable, white for flagged samples.
func (m *Map) Image() *image.RGBA {
	m.mu.RLock()
	defer m.mu.RUnlock()

	img := image.NewRGBA(image.Rect(0, 0, m.size, m.size))
	for y := 0; y < m.size; y++ {
		row := m.size - 1 - y
		for x := 0; x < m.size; x++ {
			o := img.PixOffset(x, row)
			if m.flagged[y*m.size+x] {
				img.Pix[o], img.Pix[o+1], img.Pix[o+2] = Full, Full, Full
			} else {
				base := m.index(x, y, 0)
				img.Pix[o] = m.cells[base+int(Obstacle)]
				img.Pix[o+1] = m.cells[base+int(Sample)]
				img.Pix[o+2] = m.cells[base+int(Navigable)]
			}
			img.Pix[o+3] = 255
		}
	}
	return img
}

// enforce clears obstacle evidence wherever navigable evidence exists.
// Callers hold the write lock.
func (m *Map) enforce() {
	for i := 0; i < m.size*m.size; i++ {
		base := i * int(numChannels)
		if m.cells[base+int(Navigable)] > 0 {
			m.cells[base+int(Obstacle)] = 0
		}
	}
}

func (m *Map) index(x, y int, ch Channel) int {
	return (y*m.size+x)*int(numChannels) + int(ch)
}
