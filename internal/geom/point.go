package geom

import "math"

// Point is a 2D sample coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// PointSet is an ordered, immutable sequence of sample points presumed
// to lie approximately on an arc. Construct via NewPointSet; a set always
// holds at least MinPoints points.
type PointSet struct {
	points []Point
}

// MinPoints is the smallest number of points that constrains a circle.
const MinPoints = 3

// NewPointSet validates and wraps an ordered point sequence.
// The input slice is copied, so later mutation by the caller is safe.
func NewPointSet(points []Point) (*PointSet, error) {
	if len(points) < MinPoints {
		return nil, &InvalidInputError{Got: len(points), Want: MinPoints}
	}
	ps := &PointSet{points: make([]Point, len(points))}
	copy(ps.points, points)
	return ps, nil
}

// Len returns the number of points.
func (ps *PointSet) Len() int {
	return len(ps.points)
}

// At returns the i-th point in sample order.
func (ps *PointSet) At(i int) Point {
	return ps.points[i]
}

// Points returns a copy of the underlying sequence.
func (ps *PointSet) Points() []Point {
	out := make([]Point, len(ps.points))
	copy(out, ps.points)
	return out
}

// Centroid returns the mean of all points.
func (ps *PointSet) Centroid() Point {
	var sx, sy float64
	for _, p := range ps.points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(ps.points))
	return Point{X: sx / n, Y: sy / n}
}

// MeanDistance returns the mean distance from c to every point.
func (ps *PointSet) MeanDistance(c Point) float64 {
	var total float64
	for _, p := range ps.points {
		total += c.Dist(p)
	}
	return total / float64(len(ps.points))
}

// Bounds returns the axis-aligned bounding box of the set.
func (ps *PointSet) Bounds() (min, max Point) {
	min = ps.points[0]
	max = ps.points[0]
	for _, p := range ps.points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// Span returns the larger side of the bounding box. Used to derive a
// default search range when none is configured.
func (ps *PointSet) Span() float64 {
	min, max := ps.Bounds()
	return math.Max(max.X-min.X, max.Y-min.Y)
}

// Coincident reports whether every point equals the first point exactly.
// A coincident set is degenerate geometry: a radius-0 circle "fits" but
// carries no information.
func (ps *PointSet) Coincident() bool {
	first := ps.points[0]
	for _, p := range ps.points[1:] {
		if p != first {
			return false
		}
	}
	return true
}
