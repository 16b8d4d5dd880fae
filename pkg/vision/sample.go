package vision

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultSamplePixels is the smallest connected blob, in pixels, accepted as a sample.
const DefaultSamplePixels = 20

// ccStatArea is the pixel-count column of the ConnectedComponentsWithStats stats matrix.
const ccStatArea = 4

// SampleConfirmer rejects sample masks that are only scattered noise.
type SampleConfirmer struct {
	MinPixels int // A component must have more than this many pixels
}

// NewSampleConfirmer returns a confirmer with the given pixel threshold.
func NewSampleConfirmer(minPixels int) SampleConfirmer {
	return SampleConfirmer{MinPixels: minPixels}
}

// Confirm reports whether the mask holds an 8-connected component larger
// than MinPixels. Masks whose total count is at or below the threshold are
// rejected without labeling.
func (c SampleConfirmer) Confirm(m *Mask) (bool, error) {
	if m.Width == 0 || m.Height == 0 {
		return false, nil
	}

	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, m.Pix)
	if err != nil {
		return false, fmt.Errorf("wrap sample mask: %w", err)
	}
	defer mat.Close()

	if gocv.CountNonZero(mat) <= c.MinPixels {
		return false, nil
	}

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(mat, &labels, &stats, &centroids)

	// Label 0 is the background.
	for i := 1; i < n; i++ {
		if int(stats.GetIntAt(i, ccStatArea)) > c.MinPixels {
			return true, nil
		}
	}
	return false, nil
}
