package geom

import (
	"math"
	"math/rand"
)

// ArcConfig describes a synthetic arc sample.
type ArcConfig struct {
	Center    Point   `json:"center"`
	Radius    float64 `json:"radius"`
	NumPoints int     `json:"numPoints"`
	// ArcRatio is the fraction of the full circle covered by the sample,
	// in (0, 1]. Points stay ordered along the arc.
	ArcRatio float64 `json:"arcRatio"`
	// JitterRatio perturbs each coordinate by a uniform offset scaled by
	// circumference/NumPoints, so jitter stays proportional to point spacing.
	JitterRatio float64 `json:"jitterRatio"`
}

// DefaultArcConfig returns the stock sample: 50 points on a 30% arc of a
// radius-10 circle with 5% jitter.
func DefaultArcConfig() ArcConfig {
	return ArcConfig{
		Radius:      10,
		NumPoints:   50,
		ArcRatio:    0.3,
		JitterRatio: 0.05,
	}
}

// GenerateArc produces ordered points along an arc with optional jitter.
// rng may be nil for a jitter-free sample regardless of JitterRatio.
func GenerateArc(cfg ArcConfig, rng *rand.Rand) []Point {
	n := cfg.NumPoints
	if n < 1 {
		return nil
	}

	jitter := func() float64 { return 0 }
	if rng != nil && cfg.JitterRatio > 0 {
		circumference := cfg.Radius * 2 * math.Pi
		size := cfg.JitterRatio * circumference / float64(n)
		jitter = func() float64 {
			return rng.Float64()*2*size - size
		}
	}

	ratio := cfg.ArcRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	keep := int(math.Ceil(ratio * float64(n)))
	if keep < 1 {
		keep = 1
	}

	step := 2 * math.Pi / float64(n)
	points := make([]Point, 0, keep)
	for i := 0; i < keep; i++ {
		angle := step * float64(i)
		points = append(points, Point{
			X: cfg.Center.X + cfg.Radius*math.Cos(angle) + jitter(),
			Y: cfg.Center.Y + cfg.Radius*math.Sin(angle) + jitter(),
		})
	}
	return points
}
