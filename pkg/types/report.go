// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"time"
)

// CorrelationStatus classifies an achieved correlation against its target.
type CorrelationStatus string

const (
	CorrExceeded CorrelationStatus = "EXCEEDED"
	CorrMet      CorrelationStatus = "MET"
	CorrBelow    CorrelationStatus = "BELOW"
)

// ReliabilityStatus classifies a Cronbach's alpha value.
type ReliabilityStatus string

const (
	ReliabilityExcellent    ReliabilityStatus = "excellent"
	ReliabilityGood         ReliabilityStatus = "good"
	ReliabilityAcceptable   ReliabilityStatus = "acceptable"
	ReliabilityQuestionable ReliabilityStatus = "questionable"
	ReliabilityPoor         ReliabilityStatus = "poor"
	ReliabilityUndefined    ReliabilityStatus = "undefined"
)

// DistributionFlag marks a distribution problem of a scored variable.
type DistributionFlag string

const (
	FlagExtremeSkew     DistributionFlag = "EXTREME_SKEW"
	FlagExtremeKurtosis DistributionFlag = "EXTREME_KURTOSIS"
	FlagFloorEffect     DistributionFlag = "FLOOR_EFFECT"
	FlagCeilingEffect   DistributionFlag = "CEILING_EFFECT"
	FlagLowVariance     DistributionFlag = "LOW_VARIANCE"
	FlagUndefined       DistributionFlag = "UNDEFINED"
)

// Verdict is the overall data-feasibility decision.
type Verdict string

const (
	VerdictProceed    Verdict = "proceed"
	VerdictCaution    Verdict = "caution"
	VerdictRegenerate Verdict = "regenerate"
)

// Rank orders verdicts by severity: proceed < caution < regenerate.
func (v Verdict) Rank() int {
	switch v {
	case VerdictRegenerate:
		return 2
	case VerdictCaution:
		return 1
	default:
		return 0
	}
}

// Worst returns the more severe of two verdicts.
func Worst(a, b Verdict) Verdict {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// CorrelationCheck is the achievement record of one TargetCorrelation.
type CorrelationCheck struct {
	A         string            `json:"a" yaml:"a"`
	B         string            `json:"b" yaml:"b"`
	Target    float64           `json:"target" yaml:"target"`
	Achieved  float64           `json:"achieved" yaml:"achieved"`
	Tolerance float64           `json:"tolerance" yaml:"tolerance"`
	N         int               `json:"n" yaml:"n"`
	Status    CorrelationStatus `json:"status" yaml:"status"`

	// Undefined is set when Achieved is NaN (zero variance or too few pairs).
	Undefined bool `json:"undefined,omitempty" yaml:"undefined,omitempty"`
}

// ReliabilityCheck is the Cronbach's alpha of one subscale.
type ReliabilityCheck struct {
	Subscale  string            `json:"subscale" yaml:"subscale"`
	Items     int               `json:"items" yaml:"items"`
	N         int               `json:"n" yaml:"n"`
	Alpha     float64           `json:"alpha" yaml:"alpha"`
	Status    ReliabilityStatus `json:"status" yaml:"status"`
	Undefined bool              `json:"undefined,omitempty" yaml:"undefined,omitempty"`
}

// PowerCheck is the analytic power estimate of one hypothesis.
type PowerCheck struct {
	Hypothesis string   `json:"hypothesis" yaml:"hypothesis"`
	Test       TestType `json:"test" yaml:"test"`
	EffectSize float64  `json:"effect_size" yaml:"effect_size"`
	Alpha      float64  `json:"alpha" yaml:"alpha"`
	N          int      `json:"n" yaml:"n"`
	Power      float64  `json:"power" yaml:"power"`
	Primary    bool     `json:"primary" yaml:"primary"`

	// MinN is the total sample size needed for 80% power. Zero when undefined.
	MinN      int  `json:"min_n" yaml:"min_n"`
	Undefined bool `json:"undefined,omitempty" yaml:"undefined,omitempty"`
}

// DistributionCheck holds the shape diagnostics of one scored variable.
type DistributionCheck struct {
	Variable     string             `json:"variable" yaml:"variable"`
	N            int                `json:"n" yaml:"n"`
	Mean         float64            `json:"mean" yaml:"mean"`
	SD           float64            `json:"sd" yaml:"sd"`
	Skewness     float64            `json:"skewness" yaml:"skewness"`
	Kurtosis     float64            `json:"kurtosis" yaml:"kurtosis"`
	FloorShare   float64            `json:"floor_share" yaml:"floor_share"`
	CeilingShare float64            `json:"ceiling_share" yaml:"ceiling_share"`
	Flags        []DistributionFlag `json:"flags,omitempty" yaml:"flags,omitempty"`
	Severe       bool               `json:"severe,omitempty" yaml:"severe,omitempty"`
}

// ValidationReport is the read-only outcome of the validation gate.
type ValidationReport struct {
	GeneratedAt  time.Time           `json:"generated_at" yaml:"generated_at"`
	SampleSize   int                 `json:"sample_size" yaml:"sample_size"`
	Correlations []CorrelationCheck  `json:"correlations" yaml:"correlations"`
	Reliability  []ReliabilityCheck  `json:"reliability" yaml:"reliability"`
	Power        []PowerCheck        `json:"power" yaml:"power"`
	Distribution []DistributionCheck `json:"distribution" yaml:"distribution"`

	// Concerns lists every issue that lowered the verdict, in check order.
	Concerns []string `json:"concerns" yaml:"concerns"`

	Verdict Verdict `json:"verdict" yaml:"verdict"`
}

// SimulationParameters echoes the inputs and achieved values of a run for
// audit and reproducibility. MatrixCorrected reports a PSD correction of the
// study's targets; LatentCorrected one of the derived sampling structure
// (disattenuated and copula-adjusted), which is always repaired.
type SimulationParameters struct {
	Seed            int64              `json:"seed" yaml:"seed"`
	SampleSize      int                `json:"sample_size" yaml:"sample_size"`
	NoiseScale      float64            `json:"noise_scale" yaml:"noise_scale"`
	CarelessRate    float64            `json:"careless_rate" yaml:"careless_rate"`
	MissingRate     float64            `json:"missing_rate" yaml:"missing_rate"`
	PSDPolicy       PSDPolicy          `json:"psd_policy" yaml:"psd_policy"`
	MatrixCorrected bool               `json:"matrix_corrected" yaml:"matrix_corrected"`
	LatentCorrected bool               `json:"latent_corrected" yaml:"latent_corrected"`
	CarelessCount   int                `json:"careless_count" yaml:"careless_count"`
	MissingCells    int                `json:"missing_cells" yaml:"missing_cells"`
	Correlations    []CorrelationCheck `json:"correlations" yaml:"correlations"`
}

// finite maps NaN and ±Inf to zero so the value survives JSON encoding.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// JSONSafe returns a copy of the report with non-finite statistics zeroed.
// Undefined flags are kept, so consumers can still tell a real zero from a
// statistic that could not be computed.
func (r ValidationReport) JSONSafe() ValidationReport {
	out := r
	out.Correlations = safeCorrelations(r.Correlations)
	out.Reliability = make([]ReliabilityCheck, len(r.Reliability))
	for i, c := range r.Reliability {
		c.Alpha = finite(c.Alpha)
		out.Reliability[i] = c
	}
	out.Power = make([]PowerCheck, len(r.Power))
	for i, c := range r.Power {
		c.Power = finite(c.Power)
		out.Power[i] = c
	}
	out.Distribution = make([]DistributionCheck, len(r.Distribution))
	for i, c := range r.Distribution {
		c.Mean, c.SD = finite(c.Mean), finite(c.SD)
		c.Skewness, c.Kurtosis = finite(c.Skewness), finite(c.Kurtosis)
		out.Distribution[i] = c
	}
	return out
}

// JSONSafe returns a copy of the parameters with non-finite values zeroed.
func (p SimulationParameters) JSONSafe() SimulationParameters {
	out := p
	out.Correlations = safeCorrelations(p.Correlations)
	return out
}

func safeCorrelations(in []CorrelationCheck) []CorrelationCheck {
	out := make([]CorrelationCheck, len(in))
	for i, c := range in {
		c.Achieved = finite(c.Achieved)
		out[i] = c
	}
	return out
}
