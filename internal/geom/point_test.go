package geom_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/arcfit/internal/geom"
)

func TestNewPointSetRejectsTooFewPoints(t *testing.T) {
	_, err := geom.NewPointSet([]geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}})
	require.Error(t, err)
	require.True(t, errors.Is(err, geom.ErrInvalidInput), "want InvalidInputError, got %v", err)

	_, err = geom.NewPointSet(nil)
	require.True(t, errors.Is(err, geom.ErrInvalidInput))
}

func TestNewPointSetCopiesInput(t *testing.T) {
	points := []geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}
	ps, err := geom.NewPointSet(points)
	require.NoError(t, err)

	points[0] = geom.Point{X: 99, Y: 99}
	require.Equal(t, geom.Point{X: 1, Y: 0}, ps.At(0), "point set must not alias caller slice")
}

func TestCentroidAndMeanDistance(t *testing.T) {
	ps, err := geom.NewPointSet([]geom.Point{
		{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1},
	})
	require.NoError(t, err)

	c := ps.Centroid()
	require.InDelta(t, 0, c.X, 1e-12)
	require.InDelta(t, 0, c.Y, 1e-12)

	require.InDelta(t, 1, ps.MeanDistance(c), 1e-12, "unit circle points are all at distance 1")
}

func TestBoundsAndSpan(t *testing.T) {
	ps, err := geom.NewPointSet([]geom.Point{
		{X: -2, Y: 1}, {X: 3, Y: 4}, {X: 0, Y: -1},
	})
	require.NoError(t, err)

	min, max := ps.Bounds()
	require.Equal(t, geom.Point{X: -2, Y: -1}, min)
	require.Equal(t, geom.Point{X: 3, Y: 4}, max)
	require.InDelta(t, 5, ps.Span(), 1e-12)
}

func TestCoincident(t *testing.T) {
	same := geom.Point{X: 2.5, Y: -3}
	ps, err := geom.NewPointSet([]geom.Point{same, same, same})
	require.NoError(t, err)
	require.True(t, ps.Coincident())

	ps, err = geom.NewPointSet([]geom.Point{same, same, {X: 2.5, Y: -2.999}})
	require.NoError(t, err)
	require.False(t, ps.Coincident())
}
