package geom

import "fmt"

// ErrInvalidInput is returned when a point set is too small to constrain
// a circle. Use errors.Is(err, ErrInvalidInput) to check for this error.
var ErrInvalidInput = &InvalidInputError{}

// InvalidInputError reports an under-determined point set.
type InvalidInputError struct {
	Got  int
	Want int
}

func (e *InvalidInputError) Error() string {
	if e.Want == 0 {
		return "invalid input: insufficient points"
	}
	return fmt.Sprintf("invalid input: %d points supplied, need at least %d", e.Got, e.Want)
}

func (e *InvalidInputError) Is(target error) bool {
	_, ok := target.(*InvalidInputError)
	return ok
}

// ErrDegenerateGeometry is returned when all points coincide.
// Use errors.Is(err, ErrDegenerateGeometry) to check for this error.
var ErrDegenerateGeometry = &DegenerateGeometryError{}

// DegenerateGeometryError reports a point set whose points all coincide.
// A radius-0 circle at the shared location is representable but almost
// certainly not what the caller wants, so initialization refuses it.
type DegenerateGeometryError struct {
	At Point
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry: all points coincide at (%g, %g)", e.At.X, e.At.Y)
}

func (e *DegenerateGeometryError) Is(target error) bool {
	_, ok := target.(*DegenerateGeometryError)
	return ok
}
