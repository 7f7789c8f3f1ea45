package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/arcfit/internal/geom"
	"github.com/cwbudde/arcfit/internal/store"
)

func validCheckpoint() *store.Checkpoint {
	return &store.Checkpoint{
		JobID:      "job-1",
		Center:     geom.Point{X: 0, Y: 0},
		Radius:     1,
		BestScore:  0.01,
		Iterations: 10,
		Status:     "converged",
		Timestamp:  time.Now(),
		Config: store.JobConfig{
			Points: []geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}},
			Tactic: "angle",
		},
	}
}

func TestCheckpointValidate(t *testing.T) {
	assert.NoError(t, validCheckpoint().Validate())

	tests := []struct {
		name   string
		mutate func(*store.Checkpoint)
	}{
		{"empty job id", func(c *store.Checkpoint) { c.JobID = "" }},
		{"negative radius", func(c *store.Checkpoint) { c.Radius = -1 }},
		{"negative iterations", func(c *store.Checkpoint) { c.Iterations = -5 }},
		{"zero timestamp", func(c *store.Checkpoint) { c.Timestamp = time.Time{} }},
		{"missing tactic", func(c *store.Checkpoint) { c.Config.Tactic = "" }},
		{"no input", func(c *store.Checkpoint) { c.Config.Points = nil }},
		{"too few points", func(c *store.Checkpoint) { c.Config.Points = c.Config.Points[:2] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCheckpoint()
			tt.mutate(c)

			err := c.Validate()
			require.Error(t, err)

			var ve *store.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestCheckpointValidateGeneratorOnly(t *testing.T) {
	c := validCheckpoint()
	c.Config.Points = nil
	c.Config.Generator = &geom.ArcConfig{NumPoints: 20, Radius: 5, ArcRatio: 1}
	assert.NoError(t, c.Validate())
}

func TestCheckpointIsCompatible(t *testing.T) {
	c := validCheckpoint()

	assert.NoError(t, c.IsCompatible(c.Config))

	tuned := c.Config
	tuned.MaxIterations = 99
	tuned.InitialStep = 2.5
	assert.NoError(t, c.IsCompatible(tuned), "tuning changes are compatible")

	wrongTactic := c.Config
	wrongTactic.Tactic = "radius"
	err := c.IsCompatible(wrongTactic)
	require.Error(t, err)
	var ce *store.CompatibilityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Tactic", ce.Field)

	wrongPoints := c.Config
	wrongPoints.Points = append([]geom.Point{}, c.Config.Points...)
	wrongPoints.Points = append(wrongPoints.Points, geom.Point{X: 2, Y: 2})
	err = c.IsCompatible(wrongPoints)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Points", ce.Field)

	wrongGen := c.Config
	wrongGen.Generator = &geom.ArcConfig{NumPoints: 10}
	err = c.IsCompatible(wrongGen)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Generator", ce.Field)
}

func TestCheckpointToInfo(t *testing.T) {
	c := validCheckpoint()
	info := c.ToInfo()

	assert.Equal(t, c.JobID, info.JobID)
	assert.Equal(t, c.BestScore, info.BestScore)
	assert.Equal(t, c.Iterations, info.Iterations)
	assert.Equal(t, c.Status, info.Status)
	assert.Equal(t, "angle", info.Tactic)
	assert.Equal(t, c.Timestamp, info.Timestamp)
}
