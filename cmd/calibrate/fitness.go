package main

import (
	"math"

	"github.com/pthm-cable/grain/batch"
	"github.com/pthm-cable/grain/config"
	"github.com/pthm-cable/grain/telemetry"
)

// FitnessEvaluator scores a parameter vector by how far the mean terminal
// Gini index of a small batch lands from the target.
type FitnessEvaluator struct {
	params  *ParamVector
	baseCfg *config.Config
	target  float64
	opts    batch.Options

	lastGini   float64
	lastFailed int
}

// NewFitnessEvaluator creates an evaluator running opts-sized batches on
// top of baseCfg. The fixed base seed makes evaluations repeatable, so the
// optimizer sees a deterministic objective.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, target float64, opts batch.Options) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:  params,
		baseCfg: baseCfg,
		target:  target,
		opts:    opts,
	}
}

// Evaluate runs one batch under the candidate parameters. Lower is better.
// Fitness = |mean_gini - target| + failed_runs.
func (e *FitnessEvaluator) Evaluate(raw []float64) float64 {
	cfg := *e.baseCfg
	e.params.ApplyToConfig(&cfg, raw)

	results := batch.Run(&cfg, e.opts)
	summary := telemetry.Summarize(results)

	e.lastGini = summary.GiniMean
	e.lastFailed = summary.Failed
	return math.Abs(summary.GiniMean-e.target) + float64(summary.Failed)
}

// LastGini returns the mean Gini index of the most recent evaluation.
func (e *FitnessEvaluator) LastGini() float64 {
	return e.lastGini
}

// LastFailed returns how many runs failed in the most recent evaluation.
func (e *FitnessEvaluator) LastFailed() int {
	return e.lastFailed
}
