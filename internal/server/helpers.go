package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/cwbudde/arcfit/internal/fit"
	"github.com/cwbudde/arcfit/internal/geom"
	"github.com/cwbudde/arcfit/internal/opt"
)

// buildPointSet materializes the job's input: either the points supplied
// directly or a synthetic arc from the generator recipe.
func buildPointSet(config JobConfig) (*geom.PointSet, error) {
	if len(config.Points) > 0 {
		return geom.NewPointSet(config.Points)
	}

	gen := geom.DefaultArcConfig()
	if config.Generator != nil {
		gen = *config.Generator
	}

	var rng *rand.Rand
	if gen.JitterRatio > 0 {
		rng = rand.New(rand.NewSource(config.Seed))
	}

	return geom.NewPointSet(geom.GenerateArc(gen, rng))
}

// fitConfigFrom maps job tuning fields onto a fit config. Zero fields
// keep the fit package defaults.
func fitConfigFrom(config JobConfig) fit.Config {
	cfg := fit.DefaultConfig()
	if config.InitialStep > 0 {
		cfg.InitialStep = config.InitialStep
	}
	if config.ShrinkFactor > 0 {
		cfg.ShrinkFactor = config.ShrinkFactor
	}
	if config.MinStep > 0 {
		cfg.MinStep = config.MinStep
	}
	if config.MaxIterations > 0 {
		cfg.MaxIterations = config.MaxIterations
	}
	return cfg
}

// runFit executes the configured search backend on the point set.
func runFit(ps *geom.PointSet, config JobConfig, cfg fit.Config) (*fit.Result, error) {
	tactic, err := fit.ParseTactic(config.Tactic)
	if err != nil {
		return nil, err
	}

	switch config.Algo {
	case "", "hillclimb":
		return fit.Fit(ps, tactic, cfg)
	case "mayfly":
		metric, err := fit.MetricFor(tactic)
		if err != nil {
			return nil, err
		}
		lower, upper := fit.SearchBounds(ps)
		popSize := config.PopSize
		if popSize <= 0 {
			popSize = 30
		}
		optimizer := opt.NewMayfly(cfg.MaxIterations, popSize, config.Seed, lower, upper)
		return fit.FitWith(ps, metric, optimizer)
	default:
		return nil, fmt.Errorf("unknown algo: %s", config.Algo)
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
