package fit

import (
	"math"
	"testing"

	"github.com/cwbudde/arcfit/internal/geom"
)

func unitCirclePoints(t *testing.T) *geom.PointSet {
	t.Helper()
	ps, err := geom.NewPointSet([]geom.Point{
		{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1},
	})
	if err != nil {
		t.Fatalf("NewPointSet: %v", err)
	}
	return ps
}

func TestRadiusMetricZeroOnTrueCircle(t *testing.T) {
	ps := unitCirclePoints(t)
	score := RadiusMetric{}.Score(Circle{Center: geom.Point{}, R: 1}, ps)
	if score > 1e-12 {
		t.Errorf("True circle should score ~0, got %g", score)
	}
}

func TestRadiusMetricPenalizesOffsetCenter(t *testing.T) {
	ps := unitCirclePoints(t)
	centered := RadiusMetric{}.Score(Circle{Center: geom.Point{}}, ps)
	offset := RadiusMetric{}.Score(Circle{Center: geom.Point{X: 0.5, Y: 0.2}}, ps)
	if offset <= centered {
		t.Errorf("Offset center should score worse: centered=%g offset=%g", centered, offset)
	}
}

func TestAngleMetricZeroOnTrueCircle(t *testing.T) {
	ps := unitCirclePoints(t)
	score := AngleMetric{}.Score(Circle{Center: geom.Point{}, R: 1}, ps)
	if score > 1e-12 {
		t.Errorf("True circle should score ~0, got %g", score)
	}
}

func TestAngleMetricPenalizesOffsetCenter(t *testing.T) {
	ps := unitCirclePoints(t)
	offset := AngleMetric{}.Score(Circle{Center: geom.Point{X: 0.5, Y: 0.2}}, ps)
	if offset <= 1e-6 {
		t.Errorf("Offset center should score > 0, got %g", offset)
	}
}

func TestAngleMetricSkipsZeroLengthSegments(t *testing.T) {
	ps, err := geom.NewPointSet([]geom.Point{
		{X: 1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0},
	})
	if err != nil {
		t.Fatalf("NewPointSet: %v", err)
	}

	score := AngleMetric{}.Score(Circle{Center: geom.Point{}}, ps)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		t.Errorf("Duplicate consecutive points must not poison the score, got %g", score)
	}
	if score > 1e-12 {
		t.Errorf("Remaining segments lie on the true circle, want ~0, got %g", score)
	}
}

func TestMetricsTolerateZeroRadius(t *testing.T) {
	same := geom.Point{X: 2, Y: 3}
	ps, err := geom.NewPointSet([]geom.Point{same, same, same})
	if err != nil {
		t.Fatalf("NewPointSet: %v", err)
	}

	for _, metric := range []Metric{AngleMetric{}, RadiusMetric{}} {
		score := metric.Score(Circle{Center: same, R: 0}, ps)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			t.Errorf("%s: radius-0 candidate must not divide by zero, got %g", metric.Name(), score)
		}
	}
}

func TestMetricFor(t *testing.T) {
	tests := []struct {
		tactic  Tactic
		wantErr bool
	}{
		{TacticAngle, false},
		{TacticRadius, false},
		{Tactic("bogus"), true},
	}

	for _, tt := range tests {
		metric, err := MetricFor(tt.tactic)
		if tt.wantErr {
			if err == nil {
				t.Errorf("MetricFor(%q): expected error", tt.tactic)
			}
			continue
		}
		if err != nil {
			t.Errorf("MetricFor(%q): %v", tt.tactic, err)
			continue
		}
		if metric.Name() != tt.tactic {
			t.Errorf("MetricFor(%q) returned metric named %q", tt.tactic, metric.Name())
		}
	}
}

func TestLineAngleDiffFolding(t *testing.T) {
	// Opposite directions describe the same undirected line.
	if d := lineAngleDiff(0, math.Pi); d > 1e-12 {
		t.Errorf("Opposite directions should be equivalent, got %g", d)
	}
	if d := lineAngleDiff(math.Pi/4, -3*math.Pi/4); d > 1e-12 {
		t.Errorf("Opposite diagonal directions should be equivalent, got %g", d)
	}
	if d := lineAngleDiff(0, math.Pi/2); math.Abs(d-math.Pi/2) > 1e-12 {
		t.Errorf("Perpendicular lines should differ by pi/2, got %g", d)
	}
}
