// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validation

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/thesis-engine/internal/scoring"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Distribution thresholds.
const (
	MaxAbsSkew     = 2.0
	MaxAbsKurtosis = 7.0
	MinSD          = 0.5

	endTolerance = 1e-9
)

// Diagnose computes the shape of values on a scale bounded by [lo, hi] and
// raises the distribution flags. Kurtosis is excess kurtosis. Fewer than
// four values, or a non-finite moment, raise FlagUndefined.
func Diagnose(variable string, values []float64, lo, hi float64, cfg types.ValidationConfig) types.DistributionCheck {
	c := types.DistributionCheck{Variable: variable, N: len(values)}
	if len(values) < 4 {
		c.Mean, c.SD = math.NaN(), math.NaN()
		c.Skewness, c.Kurtosis = math.NaN(), math.NaN()
		c.Flags = []types.DistributionFlag{types.FlagUndefined}
		return c
	}

	c.Mean, _ = stats.Mean(values)
	c.SD, _ = stats.StandardDeviationSample(values)
	if c.SD > 0 {
		c.Skewness = stat.Skew(values, nil)
		c.Kurtosis = stat.ExKurtosis(values, nil)
	} else {
		c.Skewness, c.Kurtosis = math.NaN(), math.NaN()
	}

	var floor, ceiling int
	for _, v := range values {
		if math.Abs(v-lo) <= endTolerance {
			floor++
		}
		if math.Abs(v-hi) <= endTolerance {
			ceiling++
		}
	}
	n := float64(len(values))
	c.FloorShare = float64(floor) / n
	c.CeilingShare = float64(ceiling) / n

	if math.Abs(c.Skewness) > MaxAbsSkew {
		c.Flags = append(c.Flags, types.FlagExtremeSkew)
	}
	if math.Abs(c.Kurtosis) > MaxAbsKurtosis {
		c.Flags = append(c.Flags, types.FlagExtremeKurtosis)
	}
	if c.FloorShare > cfg.FloorCeilingShare {
		c.Flags = append(c.Flags, types.FlagFloorEffect)
	}
	if c.CeilingShare > cfg.FloorCeilingShare {
		c.Flags = append(c.Flags, types.FlagCeilingEffect)
	}
	if c.SD < MinSD {
		c.Flags = append(c.Flags, types.FlagLowVariance)
	}
	c.Severe = c.FloorShare > cfg.SevereFloorCeilingShare || c.CeilingShare > cfg.SevereFloorCeilingShare
	return c
}

// CheckDistributions diagnoses every subscale and total score of ds, then
// every numeric demographic in defs that ds carries, bounded by its
// declared [Min, Max].
func CheckDistributions(ds *types.Dataset, defs []types.Demographic, cfg types.ValidationConfig) []types.DistributionCheck {
	var checks []types.DistributionCheck
	for _, in := range ds.Instruments {
		for _, variable := range instrumentVars(in) {
			lo, hi, _ := scoring.Bounds(in, variable)
			checks = append(checks, Diagnose(variable, present(ds, variable), lo, hi, cfg))
		}
	}

	carried := make(map[string]bool, len(ds.Demographics))
	for _, name := range ds.Demographics {
		carried[name] = true
	}
	for _, d := range defs {
		if d.Kind != types.DemographicNumeric || !carried[d.Name] {
			continue
		}
		checks = append(checks, Diagnose(d.Name, present(ds, d.Name), d.Min, d.Max, cfg))
	}
	return checks
}

// present returns the non-missing values of a variable.
func present(ds *types.Dataset, variable string) []float64 {
	col, ok := ds.Column(variable)
	var out []float64
	for i, v := range col {
		if ok[i] {
			out = append(out, v)
		}
	}
	return out
}

func instrumentVars(in types.Instrument) []string {
	vars := make([]string, 0, len(in.Subscales)+1)
	for _, s := range in.Subscales {
		vars = append(vars, types.SubscaleVar(in.Name, s.Name))
	}
	return append(vars, in.Name)
}
