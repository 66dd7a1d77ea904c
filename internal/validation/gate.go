// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validation is the data-feasibility gate. It measures a scored
// dataset against its targets (correlation achievement, reliability,
// statistical power, distribution shape) and folds the findings into a
// single proceed / caution / regenerate verdict.
//
// Data-quality problems never produce an error; they are reported as
// concerns. Statistics that cannot be computed are NaN with an Undefined
// flag and count as caution-level concerns.
package validation

import (
	"fmt"
	"math"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Verdict thresholds.
const (
	// LargeMiss is the |achieved − target| beyond which a BELOW pair is a
	// major miss.
	LargeMiss = 0.20

	// MaxMinorMisses is the number of BELOW pairs caution still tolerates.
	MaxMinorMisses = 2

	// RegenerateAlpha is the reliability below which a scale forces regenerate.
	RegenerateAlpha = 0.60

	// RegeneratePower is the primary-hypothesis power below which the run
	// must be regenerated; ProceedPower is the power required to proceed.
	RegeneratePower = 0.50
	ProceedPower    = 0.80
)

// Input bundles what the gate reads. Nothing in it is modified.
type Input struct {
	Dataset    *types.Dataset
	Targets    []types.TargetCorrelation
	Hypotheses []types.Hypothesis
	Config     types.ValidationConfig

	// Demographics are the study's definitions; numeric ones get a
	// distribution check against their bounds.
	Demographics []types.Demographic
}

// Validate runs the four checks and derives the verdict. GeneratedAt is left
// for the caller to stamp.
func Validate(in Input) types.ValidationReport {
	cfg := withDefaults(in.Config)
	n := len(in.Dataset.Respondents)

	report := types.ValidationReport{
		SampleSize:   n,
		Correlations: CheckCorrelations(in.Dataset, in.Targets),
		Reliability:  CheckReliability(in.Dataset),
		Power:        CheckPower(in.Hypotheses, n, cfg.Alpha, cfg.TargetPower),
		Distribution: CheckDistributions(in.Dataset, in.Demographics, cfg),
	}

	var concerns []string
	verdict := types.VerdictProceed
	raise := func(v types.Verdict, format string, args ...any) {
		verdict = types.Worst(verdict, v)
		concerns = append(concerns, fmt.Sprintf(format, args...))
	}

	corrVerdict, corrConcerns := judgeCorrelations(report.Correlations)
	if corrVerdict != types.VerdictProceed {
		verdict = types.Worst(verdict, corrVerdict)
		concerns = append(concerns, corrConcerns...)
	}

	for _, r := range report.Reliability {
		switch {
		case r.Undefined:
			raise(types.VerdictCaution, "reliability of %s is undefined (%d items, %d complete responses)", r.Subscale, r.Items, r.N)
		case r.Alpha < RegenerateAlpha:
			raise(types.VerdictRegenerate, "reliability of %s is poor (alpha %.2f)", r.Subscale, r.Alpha)
		case r.Status == types.ReliabilityQuestionable:
			raise(types.VerdictCaution, "reliability of %s is questionable (alpha %.2f)", r.Subscale, r.Alpha)
		}
	}

	for _, p := range report.Power {
		switch {
		case p.Undefined:
			raise(types.VerdictCaution, "power for %s is undefined at n=%d", p.Hypothesis, p.N)
		case !p.Primary:
		case p.Power < RegeneratePower:
			raise(types.VerdictRegenerate, "power for %s is %.2f at n=%d (need n≥%d)", p.Hypothesis, p.Power, p.N, p.MinN)
		case p.Power < ProceedPower:
			raise(types.VerdictCaution, "power for %s is %.2f at n=%d (need n≥%d)", p.Hypothesis, p.Power, p.N, p.MinN)
		}
	}

	for _, d := range report.Distribution {
		if len(d.Flags) == 0 {
			continue
		}
		v := types.VerdictCaution
		if d.Severe {
			v = types.VerdictRegenerate
		}
		raise(v, "distribution of %s flagged %v", d.Variable, d.Flags)
	}

	report.Concerns = concerns
	report.Verdict = verdict
	return report
}

// judgeCorrelations applies the correlation rules: two or more BELOW pairs
// off by more than LargeMiss, or more than MaxMinorMisses BELOW pairs, force
// regenerate; any other BELOW pair forces caution. EXCEEDED and MET pairs
// are never concerns.
func judgeCorrelations(checks []types.CorrelationCheck) (types.Verdict, []string) {
	var concerns []string
	misses, large := 0, 0
	for _, c := range checks {
		if c.Status != types.CorrBelow {
			continue
		}
		misses++
		if c.Undefined {
			concerns = append(concerns, fmt.Sprintf("correlation %s~%s is undefined (n=%d)", c.A, c.B, c.N))
			continue
		}
		if math.Abs(c.Achieved-c.Target) > LargeMiss {
			large++
		}
		concerns = append(concerns, fmt.Sprintf("correlation %s~%s below target: r=%.2f, target %.2f±%.2f",
			c.A, c.B, c.Achieved, c.Target, c.Tolerance))
	}
	switch {
	case large >= 2 || misses > MaxMinorMisses:
		return types.VerdictRegenerate, concerns
	case misses > 0:
		return types.VerdictCaution, concerns
	default:
		return types.VerdictProceed, nil
	}
}

func withDefaults(cfg types.ValidationConfig) types.ValidationConfig {
	def := types.DefaultPipelineConfig().Validation
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		cfg.Alpha = def.Alpha
	}
	if cfg.TargetPower <= 0 || cfg.TargetPower >= 1 {
		cfg.TargetPower = def.TargetPower
	}
	if cfg.FloorCeilingShare <= 0 {
		cfg.FloorCeilingShare = def.FloorCeilingShare
	}
	if cfg.SevereFloorCeilingShare <= 0 {
		cfg.SevereFloorCeilingShare = def.SevereFloorCeilingShare
	}
	return cfg
}
