// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package demographics generates respondent background variables. Numeric
// variables are joint-sampled with the constructs through sampler marginals
// so they can carry target correlations; categorical variables are drawn
// independently from their category weights.
package demographics

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pdiddy/thesis-engine/internal/sampler"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// WeightTolerance is how far category weights may sum from 1.
const WeightTolerance = 1e-6

// Validate checks every demographic definition. Names must be unique,
// numeric variables need Std > 0 and Min < Max, categorical variables need
// at least one category with non-negative weights summing to 1.
func Validate(defs []types.Demographic) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		field := "demographics." + d.Name
		if d.Name == "" {
			return types.Configf("demographics", "variable without a name")
		}
		if seen[d.Name] {
			return types.Configf(field, "duplicate variable")
		}
		seen[d.Name] = true

		switch d.Kind {
		case types.DemographicNumeric:
			if !(d.Std > 0) {
				return types.Configf(field, "std must be positive, got %v", d.Std)
			}
			if !(d.Min < d.Max) {
				return types.Configf(field, "min %v must be below max %v", d.Min, d.Max)
			}
		case types.DemographicCategorical:
			if len(d.Categories) == 0 {
				return types.Configf(field, "no categories")
			}
			var sum float64
			for _, c := range d.Categories {
				if c.Weight < 0 || math.IsNaN(c.Weight) {
					return types.Configf(field, "category %q has invalid weight %v", c.Name, c.Weight)
				}
				sum += c.Weight
			}
			if math.Abs(sum-1) > WeightTolerance {
				return types.Configf(field, "category weights sum to %v, want 1", sum)
			}
		default:
			return types.Configf(field, "unknown kind %q", d.Kind)
		}
	}
	return nil
}

// Numeric returns the names of the numeric variables in definition order.
func Numeric(defs []types.Demographic) []string {
	var names []string
	for _, d := range defs {
		if d.Kind == types.DemographicNumeric {
			names = append(names, d.Name)
		}
	}
	return names
}

// Marginals returns the truncated-normal sampler marginal of every numeric
// variable.
func Marginals(defs []types.Demographic) map[string]sampler.Marginal {
	out := make(map[string]sampler.Marginal)
	for _, d := range defs {
		if d.Kind != types.DemographicNumeric {
			continue
		}
		out[d.Name] = sampler.Marginal{
			Continuous: true,
			Mean:       d.Mean,
			Std:        d.Std,
			Lo:         d.Min,
			Hi:         d.Max,
			Integer:    d.Integer,
		}
	}
	return out
}

// Categorical draws n labels for d from its weights.
func Categorical(rng *rand.Rand, d types.Demographic, n int) []string {
	cum := make([]float64, len(d.Categories))
	var total float64
	for i, c := range d.Categories {
		total += c.Weight
		cum[i] = total
	}
	out := make([]string, n)
	for i := range out {
		u := rng.Float64() * total
		j := sort.SearchFloat64s(cum, u)
		if j >= len(cum) {
			j = len(cum) - 1
		}
		// Skip zero-weight categories that share a boundary.
		for j < len(cum)-1 && d.Categories[j].Weight == 0 {
			j++
		}
		out[i] = d.Categories[j].Name
	}
	return out
}

// Assign writes every demographic variable onto the respondents. Numeric
// values come from the joint sample s; categorical values are drawn from
// rng in definition order.
func Assign(rng *rand.Rand, defs []types.Demographic, s *sampler.Sample, respondents []types.Respondent) {
	for _, d := range defs {
		switch d.Kind {
		case types.DemographicNumeric:
			col := s.Column(d.Name)
			for i := range respondents {
				setDemographic(&respondents[i], d.Name, col[i])
			}
		case types.DemographicCategorical:
			labels := Categorical(rng, d, len(respondents))
			for i := range respondents {
				setDemographic(&respondents[i], d.Name, labels[i])
			}
		}
	}
}

func setDemographic(r *types.Respondent, name string, v any) {
	if r.Demographics == nil {
		r.Demographics = make(map[string]any)
	}
	r.Demographics[name] = v
}
