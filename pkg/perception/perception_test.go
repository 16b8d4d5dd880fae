package perception

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/teslashibe/go-rover/pkg/geometry"
	"github.com/teslashibe/go-rover/pkg/vision"
	"github.com/teslashibe/go-rover/pkg/worldmap"
)

// identityWarper skips rectification so frames classify as drawn.
type identityWarper struct {
	calls int
}

func (w *identityWarper) Warp(img *image.RGBA) (*image.RGBA, error) {
	w.calls++
	return img, nil
}

type failingWarper struct{}

func (failingWarper) Warp(*image.RGBA) (*image.RGBA, error) {
	return nil, errors.New("boom")
}

// countConfirmer accepts any mask with more than min pixels.
type countConfirmer struct {
	min int
}

func (c countConfirmer) Confirm(m *vision.Mask) (bool, error) {
	return m.Count() > c.min, nil
}

var (
	ground = color.RGBA{200, 190, 180, 255}
	rock   = color.RGBA{60, 50, 40, 255}
	gold   = color.RGBA{180, 150, 20, 255}
)

// terrainFrame is 40x20: the bottom half is ground, the top half rock.
func terrainFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if y >= 10 {
				img.SetRGBA(x, y, ground)
			} else {
				img.SetRGBA(x, y, rock)
			}
		}
	}
	return img
}

// sampleFrame adds a 5x5 gold patch to the left of the terrain frame.
func sampleFrame() *image.RGBA {
	img := terrainFrame()
	for y := 12; y < 17; y++ {
		for x := 2; x < 7; x++ {
			img.SetRGBA(x, y, gold)
		}
	}
	return img
}

func newTestPipeline() (*Pipeline, *worldmap.Map, *identityWarper) {
	world := worldmap.New(200, 10)
	w := &identityWarper{}
	return New(DefaultConfig(), w, countConfirmer{min: vision.DefaultSamplePixels}, world), world, w
}

func TestSampleDetector_Hysteresis(t *testing.T) {
	d := NewSampleDetector(DefaultGraceFrames)

	if d.Near() {
		t.Fatal("Expected not near initially")
	}
	if !d.Observe(true) {
		t.Fatal("Expected near after confirmation")
	}

	for i := 1; i <= 49; i++ {
		d.Observe(false)
	}
	if !d.Near() {
		t.Error("Expected near after 49 misses")
	}

	d.Observe(false) // 50
	if !d.Near() {
		t.Error("Expected near after 50 misses")
	}

	d.Observe(false) // 51
	if d.Near() {
		t.Error("Expected not near after 51 misses")
	}
	if d.FramesSinceSeen() != 51 {
		t.Errorf("Expected 51 frames since seen, got %d", d.FramesSinceSeen())
	}
}

func TestSampleDetector_ReconfirmResets(t *testing.T) {
	d := NewSampleDetector(3)
	d.Observe(true)
	d.Observe(false)
	d.Observe(false)
	d.Observe(true)
	if d.FramesSinceSeen() != 0 {
		t.Errorf("Expected reset to 0, got %d", d.FramesSinceSeen())
	}
	for i := 0; i < 3; i++ {
		d.Observe(false)
	}
	if !d.Near() {
		t.Error("Expected near within grace period after reconfirmation")
	}
	d.Observe(false)
	if d.Near() {
		t.Error("Expected not near after grace period")
	}
}

func TestNavStats_MeanAngle(t *testing.T) {
	s := NewNavStats([]float64{10, 10}, []float64{10, -10})
	deg, ok := s.MeanAngle()
	if !ok || math.Abs(deg) > 1e-9 {
		t.Errorf("Expected mean 0°, got %v (ok=%v)", deg, ok)
	}

	s = NewNavStats([]float64{1}, []float64{1})
	deg, _ = s.MeanAngle()
	if math.Abs(deg-45) > 1e-9 {
		t.Errorf("Expected 45°, got %v", deg)
	}
}

func TestNavStats_Empty(t *testing.T) {
	var nilStats *NavStats
	if nilStats.Len() != 0 {
		t.Error("Expected nil stats to have length 0")
	}
	if _, ok := nilStats.MeanAngle(); ok {
		t.Error("Expected no mean for nil stats")
	}

	empty := NewNavStats(nil, nil)
	if _, ok := empty.MeanAngle(); ok {
		t.Error("Expected no mean for empty stats")
	}
	if empty.MeanDist() != 0 {
		t.Error("Expected zero mean distance for empty stats")
	}
}

func TestSelectSource(t *testing.T) {
	tests := []struct {
		confirmed, near bool
		want            Source
	}{
		{true, true, SourceSample},
		{false, false, SourceNavigable},
		{false, true, SourceNone},
	}
	for _, tt := range tests {
		if got := selectSource(tt.confirmed, tt.near); got != tt.want {
			t.Errorf("selectSource(%v, %v) = %v, want %v", tt.confirmed, tt.near, got, tt.want)
		}
	}
}

func TestProcess_NavigableFrame(t *testing.T) {
	p, world, _ := newTestPipeline()
	pose := geometry.Pose{X: 100, Y: 100}

	res, err := p.Process(terrainFrame(), pose, false)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if res.Confirmed || res.Near {
		t.Error("Expected no sample")
	}
	if res.Source != SourceNavigable {
		t.Errorf("Expected navigable source, got %v", res.Source)
	}
	if res.Stats.Len() != 40*10 {
		t.Errorf("Expected 400 navigable pixels, got %d", res.Stats.Len())
	}
	if err := world.Check(); err != nil {
		t.Errorf("Map invariant violated: %v", err)
	}
	if world.Stats().NavigableCells == 0 {
		t.Error("Expected navigable cells in the world map")
	}
	if p.VisionImage() == nil {
		t.Error("Expected vision image after a frame")
	}
}

func TestProcess_SampleThenCoast(t *testing.T) {
	p, world, _ := newTestPipeline()
	pose := geometry.Pose{X: 100, Y: 100}

	res, err := p.Process(sampleFrame(), pose, false)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if !res.Confirmed || !res.Near || res.Source != SourceSample {
		t.Fatalf("Expected confirmed sample source, got %+v", res)
	}
	if res.Stats.Len() != 25 {
		t.Errorf("Expected 25 sample pixels, got %d", res.Stats.Len())
	}
	// Patch is left of center, so the mean angle is positive.
	if deg, _ := res.Stats.MeanAngle(); deg <= 0 {
		t.Errorf("Expected positive angle toward the sample, got %v", deg)
	}
	if len(res.SampleCells) == 0 || !world.Flagged(res.SampleCells[0].X, res.SampleCells[0].Y) {
		t.Error("Expected sample cells flagged in the world map")
	}
	sampleStats := res.Stats

	// Sample lost: statistics are not recomputed.
	res, err = p.Process(terrainFrame(), pose, false)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if res.Confirmed || !res.Near {
		t.Fatalf("Expected near but unconfirmed, got %+v", res)
	}
	if res.Source != SourceNone || res.Stats != sampleStats {
		t.Error("Expected stale sample statistics to be kept")
	}
}

func TestProcess_NavigableAfterGrace(t *testing.T) {
	p, _, _ := newTestPipeline()
	pose := geometry.Pose{X: 100, Y: 100}

	p.Process(sampleFrame(), pose, false)
	var res Result
	for i := 0; i < DefaultGraceFrames+1; i++ {
		res, _ = p.Process(terrainFrame(), pose, false)
	}
	if res.Near {
		t.Fatal("Expected sample proximity to lapse")
	}
	if res.Source != SourceNavigable || res.Stats.Len() != 400 {
		t.Errorf("Expected fresh navigable statistics, got %v with %d", res.Source, res.Stats.Len())
	}
}

func TestProcess_PickingUpSkips(t *testing.T) {
	p, world, w := newTestPipeline()
	pose := geometry.Pose{X: 100, Y: 100}

	res, err := p.Process(terrainFrame(), pose, true)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if !res.Skipped {
		t.Error("Expected frame skipped")
	}
	if w.calls != 0 {
		t.Error("Expected no rectification while picking up")
	}
	if world.Stats().MappedFraction != 0 {
		t.Error("Expected world map untouched")
	}
	if p.Stats() != nil {
		t.Error("Expected no statistics yet")
	}
}

func TestProcess_WarpError(t *testing.T) {
	world := worldmap.New(200, 10)
	p := New(DefaultConfig(), failingWarper{}, countConfirmer{min: 20}, world)

	if _, err := p.Process(terrainFrame(), geometry.Pose{}, false); err == nil {
		t.Error("Expected rectify error")
	}
}

func TestSourceString(t *testing.T) {
	if SourceSample.String() != "sample" || SourceNone.String() != "stale" {
		t.Error("Unexpected source names")
	}
}
