package fit

import (
	"math"

	"github.com/cwbudde/arcfit/internal/geom"
)

// Metric scores how badly a candidate circle explains a point set.
// Lower is better; a perfect fit scores 0. Both variants judge the
// candidate by its center and tolerate a radius of 0 without dividing
// by zero.
type Metric interface {
	Name() Tactic
	Score(c Circle, ps *geom.PointSet) float64
}

// MetricFor returns the metric implementing the given tactic.
func MetricFor(t Tactic) (Metric, error) {
	switch t {
	case TacticAngle:
		return AngleMetric{}, nil
	case TacticRadius:
		return RadiusMetric{}, nil
	default:
		_, err := ParseTactic(string(t))
		return nil, err
	}
}

// AngleMetric scores tangent consistency: for each consecutive segment
// of the arc, the segment's normal should point along the line from the
// segment midpoint to the circle center. The score is the mean angular
// deviation between those two directions across all segments.
//
// Local two-point geometry makes this metric the more jitter-sensitive
// of the two tactics.
type AngleMetric struct{}

func (AngleMetric) Name() Tactic { return TacticAngle }

func (AngleMetric) Score(c Circle, ps *geom.PointSet) float64 {
	var sum float64
	var count int

	for i := 1; i < ps.Len(); i++ {
		p0 := ps.At(i - 1)
		p1 := ps.At(i)
		vx := p1.X - p0.X
		vy := p1.Y - p0.Y
		if vx == 0 && vy == 0 {
			// Duplicate consecutive points have no defined normal.
			continue
		}

		mid := geom.Point{X: (p0.X + p1.X) / 2, Y: (p0.Y + p1.Y) / 2}

		// Segment normal (-vy, vx) versus the midpoint-to-center direction.
		normalAngle := math.Atan2(vx, -vy)
		centerAngle := math.Atan2(c.Center.Y-mid.Y, c.Center.X-mid.X)

		sum += lineAngleDiff(normalAngle, centerAngle)
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// lineAngleDiff returns the deviation between two undirected lines given
// by their direction angles. The normal's sign is ambiguous, so the
// difference is folded to [0, pi/2].
func lineAngleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), math.Pi)
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}

// RadiusMetric scores distance spread: the mean center-to-point distance
// is the expected radius for the candidate center, and the score is the
// mean squared deviation of each point's distance from that mean.
//
// Aggregating a population statistic makes this metric robust to jitter;
// it is the better performer on noisy data.
type RadiusMetric struct{}

func (RadiusMetric) Name() Tactic { return TacticRadius }

func (RadiusMetric) Score(c Circle, ps *geom.PointSet) float64 {
	n := ps.Len()
	dists := make([]float64, n)
	var total float64
	for i := 0; i < n; i++ {
		dists[i] = c.Center.Dist(ps.At(i))
		total += dists[i]
	}
	mean := total / float64(n)

	var sum float64
	for _, d := range dists {
		dev := d - mean
		sum += dev * dev
	}
	return sum / float64(n)
}
