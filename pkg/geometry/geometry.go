// Package geometry converts pixel coordinates between the rover-centric,
// polar and world frames.
//
// Rover-centric frame: origin at the rover's ground contact point, x forward,
// y to the left, one unit per rectified pixel. World frame: the map grid,
// scale rover pixels per world cell, yaw measured in degrees.
package geometry

import "math"

// Pose is a snapshot of the rover's position and heading in the world frame.
type Pose struct {
	X   float64 // World x position
	Y   float64 // World y position
	Yaw float64 // Heading in degrees
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// Clamp limits a value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ToPolar returns the distance and angle (radians) of a rover-centric point.
// The origin maps to (0, 0).
func ToPolar(x, y float64) (dist, angle float64) {
	return math.Sqrt(x*x + y*y), math.Atan2(y, x)
}

// Rotate rotates a point by yaw degrees counter-clockwise.
func Rotate(x, y, yaw float64) (float64, float64) {
	rad := Radians(yaw)
	cos, sin := math.Cos(rad), math.Sin(rad)
	return x*cos - y*sin, x*sin + y*cos
}

// Translate scales a rotated point down to world units and offsets it by the origin.
func Translate(x, y, originX, originY, scale float64) (float64, float64) {
	return x/scale + originX, y/scale + originY
}

// ToWorld maps a rover-centric point to a world cell. Points that land
// outside the map are saturated to the nearest edge cell.
func ToWorld(x, y float64, pose Pose, mapSize int, scale float64) (int, int) {
	rx, ry := Rotate(x, y, pose.Yaw)
	tx, ty := Translate(rx, ry, pose.X, pose.Y, scale)
	return clampIndex(tx, mapSize), clampIndex(ty, mapSize)
}

// FromWorld is the inverse of the rotate and translate steps of ToWorld.
// It takes unrounded world coordinates and applies no clamping.
func FromWorld(wx, wy float64, pose Pose, scale float64) (float64, float64) {
	rx := (wx - pose.X) * scale
	ry := (wy - pose.Y) * scale
	return Rotate(rx, ry, -pose.Yaw)
}

// clampIndex truncates toward zero, then saturates to [0, size-1].
func clampIndex(v float64, size int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= float64(size-1) {
		return size - 1
	}
	return int(v)
}
