// Package main provides CMA-ES calibration of simulation parameters toward a
// target level of wealth inequality.
package main

import (
	"github.com/pthm-cable/grain/config"
)

// ParamSpec defines a single calibratable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all calibratable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of calibratable parameters. Grid
// dimensions and population size stay fixed so batches remain comparable.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "percent_best_land", Path: "grid.percent_best_land", Min: 1, Max: 50},
			{Name: "grain_grown", Path: "grid.grain_grown", Min: 1, Max: 10},
			{Name: "max_vision", Path: "population.max_vision", Min: 1, Max: 15},
			{Name: "max_metabolism", Path: "population.max_metabolism", Min: 1, Max: 25},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Grid.PercentBestLand = clamped[0]
	cfg.Derived.BestLandFraction = clamped[0] / 100
	cfg.Grid.GrainGrown = int(clamped[1])
	cfg.Population.MaxVision = int(clamped[2])
	cfg.Population.MaxMetabolism = int(clamped[3])
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Grid.PercentBestLand,
		float64(cfg.Grid.GrainGrown),
		float64(cfg.Population.MaxVision),
		float64(cfg.Population.MaxMetabolism),
	}
}
