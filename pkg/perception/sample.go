package perception

// DefaultGraceFrames is how many consecutive missed detections keep a sample "near".
const DefaultGraceFrames = 50

// SampleDetector tracks whether a sample is being approached, with
// hysteresis so that a few missed detections do not drop the target.
type SampleDetector struct {
	GraceFrames int

	near            bool
	framesSinceSeen int
}

// NewSampleDetector creates a detector with the given grace period.
func NewSampleDetector(graceFrames int) *SampleDetector {
	return &SampleDetector{GraceFrames: graceFrames}
}

// Observe records one frame's detection result and returns the near flag.
func (d *SampleDetector) Observe(confirmed bool) bool {
	if confirmed {
		d.framesSinceSeen = 0
		d.near = true
		return d.near
	}
	d.framesSinceSeen++
	if d.framesSinceSeen > d.GraceFrames {
		d.near = false
	}
	return d.near
}

// Near reports whether a sample is currently being approached.
func (d *SampleDetector) Near() bool {
	return d.near
}

// FramesSinceSeen returns the number of frames since the last confirmation.
func (d *SampleDetector) FramesSinceSeen() int {
	return d.framesSinceSeen
}
