package vision

import "image"

// RGB is a per-channel threshold triple.
type RGB struct {
	R, G, B uint8
}

// Default thresholds tuned for the simulator's terrain and sample colors.
var (
	DefaultNavigable  = RGB{170, 170, 170}
	DefaultSampleLow  = RGB{120, 100, 0}
	DefaultSampleHigh = RGB{233, 210, 58}
)

// NavigableMask marks pixels whose three channels all exceed thresh.
// Comparisons are strict: a channel equal to the threshold fails.
func NavigableMask(img *image.RGBA, thresh RGB) *Mask {
	return selectPixels(img, func(r, g, b uint8) bool {
		return r > thresh.R && g > thresh.G && b > thresh.B
	})
}

// ObstacleMask is the complement of the navigable mask over the whole
// rectified frame, so the black border outside the camera footprint
// counts as obstacle.
func ObstacleMask(navigable *Mask) *Mask {
	return navigable.Not()
}

// SampleMask marks pixels whose channels each fall within the closed
// interval [low, high]. It is meant for the raw, unrectified frame.
func SampleMask(img *image.RGBA, low, high RGB) *Mask {
	return selectPixels(img, func(r, g, b uint8) bool {
		return r >= low.R && r <= high.R &&
			g >= low.G && g <= high.G &&
			b >= low.B && b <= high.B
	})
}

// VisionImage composes the three masks into a debug bitmap:
// red for obstacle, green for sample, blue for navigable.
func VisionImage(obstacle, sample, navigable *Mask) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, navigable.Width, navigable.Height))
	for i := range navigable.Pix {
		o := i * 4
		out.Pix[o] = obstacle.Pix[i] * 255
		out.Pix[o+1] = sample.Pix[i] * 255
		out.Pix[o+2] = navigable.Pix[i] * 255
		out.Pix[o+3] = 255
	}
	return out
}

func selectPixels(img *image.RGBA, keep func(r, g, b uint8) bool) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < m.Width; x++ {
			p := img.Pix[off+x*4 : off+x*4+3]
			if keep(p[0], p[1], p[2]) {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}
