package quadcast

import "math"

// Point is a 2D position in normalized device coordinates.
type Point struct {
	X, Y float64
}

// Pt creates a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Clamp returns the point with each component restricted to [-1, 1].
// NaN components become 0.
func (p Point) Clamp() Point {
	return Point{X: clampUnit(p.X), Y: clampUnit(p.Y)}
}

// clampUnit restricts x to [-1, 1].
func clampUnit(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < -1:
		return -1
	case x > 1:
		return 1
	}
	return x
}
