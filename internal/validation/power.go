// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validation

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// CorrelationPower is the two-tailed power of a test of r ≠ 0 at sample size
// n, using the Fisher z normal approximation (SE = 1/√(n−3)). It returns NaN
// when n ≤ 3 or |r| ≥ 1.
func CorrelationPower(r float64, n int, alpha float64) float64 {
	if n <= 3 || math.IsNaN(r) || math.Abs(r) >= 1 || !validAlpha(alpha) {
		return math.NaN()
	}
	shift := math.Atanh(math.Abs(r)) * math.Sqrt(float64(n-3))
	return twoTailed(shift, alpha)
}

// CorrelationMinN is the smallest n giving the requested power for r. It
// returns 0 when no finite n exists (r = 0) or inputs are invalid.
func CorrelationMinN(r, alpha, power float64) int {
	if math.IsNaN(r) || r == 0 || math.Abs(r) >= 1 || !validAlpha(alpha) || power <= 0 || power >= 1 {
		return 0
	}
	z := zSum(alpha, power) / math.Atanh(math.Abs(r))
	return int(math.Ceil(z*z + 3))
}

// TwoGroupPower is the two-tailed power of an independent-samples mean
// comparison with effect size d and total size n split evenly
// (n/2 per group), using the normal approximation of the t test. It returns
// NaN when fewer than two respondents fall into each group.
func TwoGroupPower(d float64, n int, alpha float64) float64 {
	perGroup := float64(n) / 2
	if perGroup < 2 || math.IsNaN(d) || !validAlpha(alpha) {
		return math.NaN()
	}
	shift := math.Abs(d) * math.Sqrt(perGroup/2)
	return twoTailed(shift, alpha)
}

// TwoGroupMinN is the smallest total n (both groups) giving the requested
// power for d. It returns 0 when d = 0 or inputs are invalid.
func TwoGroupMinN(d, alpha, power float64) int {
	if math.IsNaN(d) || d == 0 || !validAlpha(alpha) || power <= 0 || power >= 1 {
		return 0
	}
	z := zSum(alpha, power) / math.Abs(d)
	perGroup := math.Ceil(2 * z * z)
	return int(2 * perGroup)
}

// CheckPower estimates power and minimum n for every hypothesis at sample
// size n. Alpha falls back to defaultAlpha. When no hypothesis is marked
// primary, every hypothesis is treated as primary.
func CheckPower(hyps []types.Hypothesis, n int, defaultAlpha, targetPower float64) []types.PowerCheck {
	anyPrimary := false
	for _, h := range hyps {
		anyPrimary = anyPrimary || h.Primary
	}

	checks := make([]types.PowerCheck, 0, len(hyps))
	for _, h := range hyps {
		alpha := h.Alpha
		if alpha <= 0 {
			alpha = defaultAlpha
		}
		var power float64
		var minN int
		switch h.Test {
		case types.TestTwoGroup:
			power = TwoGroupPower(h.EffectSize, n, alpha)
			minN = TwoGroupMinN(h.EffectSize, alpha, targetPower)
		default:
			power = CorrelationPower(h.EffectSize, n, alpha)
			minN = CorrelationMinN(h.EffectSize, alpha, targetPower)
		}
		checks = append(checks, types.PowerCheck{
			Hypothesis: h.ID,
			Test:       h.Test,
			EffectSize: h.EffectSize,
			Alpha:      alpha,
			N:          n,
			Power:      power,
			Primary:    h.Primary || !anyPrimary,
			MinN:       minN,
			Undefined:  math.IsNaN(power),
		})
	}
	return checks
}

// twoTailed returns P(|Z + shift| > z_crit) for a standard normal Z.
func twoTailed(shift, alpha float64) float64 {
	crit := distuv.UnitNormal.Quantile(1 - alpha/2)
	return distuv.UnitNormal.CDF(shift-crit) + distuv.UnitNormal.CDF(-shift-crit)
}

func zSum(alpha, power float64) float64 {
	return distuv.UnitNormal.Quantile(1-alpha/2) + distuv.UnitNormal.Quantile(power)
}

func validAlpha(alpha float64) bool {
	return alpha > 0 && alpha < 1
}
