package fit

import (
	"fmt"

	"github.com/cwbudde/arcfit/internal/geom"
)

// Circle is a candidate fit: a center and a non-negative radius.
type Circle struct {
	Center geom.Point `json:"center"`
	R      float64    `json:"r"`
}

func (c Circle) String() string {
	return fmt.Sprintf("center=(%.6g, %.6g) r=%.6g", c.Center.X, c.Center.Y, c.R)
}

// Tactic selects the scoring strategy for a fit run. The choice is fixed
// for the duration of one run; there is no mixed-mode scoring.
type Tactic string

const (
	// TacticAngle scores tangent consistency of consecutive segments.
	// Sensitive to local ordering noise.
	TacticAngle Tactic = "angle"

	// TacticRadius scores spread of center-to-point distances around their
	// mean. Robust on noisy data.
	TacticRadius Tactic = "radius"
)

// ParseTactic validates a tactic name.
func ParseTactic(s string) (Tactic, error) {
	switch Tactic(s) {
	case TacticAngle:
		return TacticAngle, nil
	case TacticRadius:
		return TacticRadius, nil
	default:
		return "", fmt.Errorf("unknown tactic: %q (want %q or %q)", s, TacticAngle, TacticRadius)
	}
}
