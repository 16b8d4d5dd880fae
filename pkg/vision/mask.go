// Package vision turns a forward camera frame into binary terrain masks.
//
// The rectifier reprojects the frame to a bird's-eye view, the classifier
// thresholds it into navigable, obstacle and sample masks, and RoverCoords
// places mask pixels in the rover-centric frame.
package vision

// Mask is a binary image. Every element of Pix is 0 or 1, row-major.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates an all-zero mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the value at column x, row y.
func (m *Mask) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// Set marks column x, row y.
func (m *Mask) Set(x, y int) {
	m.Pix[y*m.Width+x] = 1
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		n += int(v)
	}
	return n
}

// Not returns the complement of the mask.
func (m *Mask) Not() *Mask {
	out := NewMask(m.Width, m.Height)
	for i, v := range m.Pix {
		out.Pix[i] = 1 - v
	}
	return out
}

// RoverCoords returns the rover-centric coordinates of every set pixel,
// in row-major order. The origin is the bottom-center of the image with x
// pointing up the image (forward) and y pointing left.
func RoverCoords(m *Mask) (xs, ys []float64) {
	n := m.Count()
	xs = make([]float64, 0, n)
	ys = make([]float64, 0, n)
	half := float64(m.Width) / 2
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			xs = append(xs, float64(m.Height-y))
			ys = append(ys, half-float64(x))
		}
	}
	return xs, ys
}
