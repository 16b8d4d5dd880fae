package vision

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"gocv.io/x/gocv"
)

// Point is a calibration point in image coordinates.
type Point struct {
	X, Y float64
}

// DefaultSource is the ground-plane trapezoid seen by the simulator camera,
// ordered bottom-left, bottom-right, top-right, top-left.
var DefaultSource = [4]Point{{14, 140}, {301, 140}, {200, 96}, {118, 96}}

// Destination returns the bird's-eye square the source trapezoid maps onto.
// The square has side 2*dstSize and sits bottomOffset pixels above the
// bottom edge, centered horizontally.
func Destination(width, height int, dstSize, bottomOffset float64) [4]Point {
	cx := float64(width) / 2
	bottom := float64(height) - bottomOffset
	top := bottom - 2*dstSize
	return [4]Point{
		{cx - dstSize, bottom},
		{cx + dstSize, bottom},
		{cx + dstSize, top},
		{cx - dstSize, top},
	}
}

// Rectifier applies a fixed perspective warp to camera frames.
type Rectifier struct {
	transform gocv.Mat
	size      image.Point
	mu        sync.Mutex // Protects transform
}

// NewRectifier solves the source→destination homography once for frames
// of the given size.
func NewRectifier(width, height int, src, dst [4]Point) (*Rectifier, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}
	if degenerate(src) || degenerate(dst) {
		return nil, ErrDegenerateQuad
	}

	srcVec := gocv.NewPoint2fVectorFromPoints(toPoint2f(src))
	defer srcVec.Close()
	dstVec := gocv.NewPoint2fVectorFromPoints(toPoint2f(dst))
	defer dstVec.Close()

	m := gocv.GetPerspectiveTransform2f(srcVec, dstVec)
	if m.Empty() {
		return nil, ErrDegenerateQuad
	}

	return &Rectifier{
		transform: m,
		size:      image.Pt(width, height),
	}, nil
}

// Size returns the frame size the rectifier expects.
func (r *Rectifier) Size() image.Point {
	return r.size
}

// Warp returns the bird's-eye view of img at the same size.
// Pixels with no source in the camera frame are black.
func (r *Rectifier) Warp(img *image.RGBA) (*image.RGBA, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	if b.Size() != r.size {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrSizeMismatch, b.Size(), r.size)
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	r.mu.Lock()
	gocv.WarpPerspective(src, &dst, r.transform, r.size)
	r.mu.Unlock()

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert warped frame: %w", err)
	}
	return toRGBA(out), nil
}

// Close releases the homography matrix.
func (r *Rectifier) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transform.Close()
}

func toPoint2f(pts [4]Point) []gocv.Point2f {
	out := make([]gocv.Point2f, len(pts))
	for i, p := range pts {
		out[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return out
}

// degenerate reports whether three of the four points are collinear.
func degenerate(q [4]Point) bool {
	for i := 0; i < 4; i++ {
		a, b, c := q[i], q[(i+1)%4], q[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		if cross == 0 {
			return true
		}
	}
	return false
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
