// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "math"

// Descriptive summarizes one observed variable over its non-missing values.
type Descriptive struct {
	Variable string  `json:"variable" yaml:"variable"`
	N        int     `json:"n" yaml:"n"`
	Missing  int     `json:"missing" yaml:"missing"`
	Mean     float64 `json:"mean" yaml:"mean"`
	SD       float64 `json:"sd" yaml:"sd"`
	Median   float64 `json:"median" yaml:"median"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Skewness float64 `json:"skewness" yaml:"skewness"`
	Kurtosis float64 `json:"kurtosis" yaml:"kurtosis"`
}

// HypothesisTest is the result of running one hypothesis's test on a
// dataset. For correlation tests Statistic is the Fisher z of Pearson's r,
// Effect is r and DF is zero; for two_group tests Statistic is Welch's t
// with Welch–Satterthwaite DF and Effect is Cohen's d. CILow and CIHigh
// bound r, or the mean difference for two_group.
type HypothesisTest struct {
	Hypothesis string   `json:"hypothesis" yaml:"hypothesis"`
	Test       TestType `json:"test" yaml:"test"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	N          int      `json:"n" yaml:"n"`
	Statistic  float64  `json:"statistic" yaml:"statistic"`
	DF         float64  `json:"df" yaml:"df"`
	PValue     float64  `json:"p_value" yaml:"p_value"`
	Effect     float64  `json:"effect" yaml:"effect"`
	Expected   float64  `json:"expected" yaml:"expected"`
	CILow      float64  `json:"ci_low" yaml:"ci_low"`
	CIHigh     float64  `json:"ci_high" yaml:"ci_high"`
	Alpha      float64  `json:"alpha" yaml:"alpha"`

	// Significant is p < Alpha.
	Significant bool `json:"significant" yaml:"significant"`

	// Supported is Significant with the effect in the expected direction.
	Supported bool `json:"supported" yaml:"supported"`

	// Skipped explains why the test could not be run; the statistics are
	// then meaningless.
	Skipped string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Analysis is the descriptive and inferential pass over a dataset.
type Analysis struct {
	Descriptives []Descriptive      `json:"descriptive_stats" yaml:"descriptive_stats"`
	Tests        []HypothesisTest   `json:"hypothesis_tests" yaml:"hypothesis_tests"`
	Reliability  []ReliabilityCheck `json:"reliability" yaml:"reliability"`
}

// JSONSafe returns a copy with non-finite statistics zeroed.
func (a Analysis) JSONSafe() Analysis {
	out := Analysis{
		Descriptives: make([]Descriptive, len(a.Descriptives)),
		Tests:        make([]HypothesisTest, len(a.Tests)),
		Reliability:  make([]ReliabilityCheck, len(a.Reliability)),
	}
	for i, d := range a.Descriptives {
		d.Mean, d.SD, d.Median = finite(d.Mean), finite(d.SD), finite(d.Median)
		d.Min, d.Max = finite(d.Min), finite(d.Max)
		d.Skewness, d.Kurtosis = finite(d.Skewness), finite(d.Kurtosis)
		out.Descriptives[i] = d
	}
	for i, t := range a.Tests {
		t.Statistic, t.DF, t.PValue = finite(t.Statistic), finite(t.DF), finite(t.PValue)
		t.Effect, t.CILow, t.CIHigh = finite(t.Effect), finite(t.CILow), finite(t.CIHigh)
		out.Tests[i] = t
	}
	for i, r := range a.Reliability {
		if math.IsNaN(r.Alpha) || math.IsInf(r.Alpha, 0) {
			r.Alpha, r.Undefined = 0, true
		}
		out.Reliability[i] = r
	}
	return out
}
