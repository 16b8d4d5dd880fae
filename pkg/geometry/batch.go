package geometry

// Cell is a world map index.
type Cell struct {
	X, Y int
}

// PolarSlice converts parallel rover-centric coordinate slices to distances and angles.
func PolarSlice(xs, ys []float64) (dists, angles []float64) {
	dists = make([]float64, len(xs))
	angles = make([]float64, len(xs))
	for i := range xs {
		dists[i], angles[i] = ToPolar(xs[i], ys[i])
	}
	return dists, angles
}

// WorldSlice converts parallel rover-centric coordinate slices to world cells.
func WorldSlice(xs, ys []float64, pose Pose, mapSize int, scale float64) []Cell {
	cells := make([]Cell, len(xs))
	for i := range xs {
		cells[i].X, cells[i].Y = ToWorld(xs[i], ys[i], pose, mapSize, scale)
	}
	return cells
}
