// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis runs the descriptive and inferential pass a thesis
// chapter reports: per-variable descriptive statistics and the declared
// hypothesis tests, each with a p-value, effect size and confidence
// interval.
//
// Hypotheses that cannot be tested on the data (unresolved variables,
// groups too small, zero variance) are reported with a Skipped reason
// rather than an error.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pdiddy/thesis-engine/internal/validation"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// DefaultAlpha is the significance level used when neither the hypothesis
// nor the caller supplies one.
const DefaultAlpha = 0.05

// maxR keeps atanh finite for perfectly correlated data.
const maxR = 1 - 1e-12

// Input bundles what Analyze reads.
type Input struct {
	Dataset      *types.Dataset
	Targets      []types.TargetCorrelation
	Hypotheses   []types.Hypothesis
	Demographics []types.Demographic

	// Reliability is carried into the result as computed by the gate.
	Reliability []types.ReliabilityCheck

	// Alpha is the default significance level.
	Alpha float64
}

// Analyze computes descriptive statistics for every score and numeric
// demographic and runs every hypothesis test.
func Analyze(in Input) types.Analysis {
	alpha := in.Alpha
	if !(alpha > 0 && alpha < 1) {
		alpha = DefaultAlpha
	}
	out := types.Analysis{Reliability: in.Reliability}

	vars := in.Dataset.ScoreVars()
	for _, d := range in.Demographics {
		if d.Kind == types.DemographicNumeric && carries(in.Dataset, d.Name) {
			vars = append(vars, d.Name)
		}
	}
	for _, v := range vars {
		out.Descriptives = append(out.Descriptives, Describe(in.Dataset, v))
	}

	for _, h := range in.Hypotheses {
		a := h.Alpha
		if a <= 0 {
			a = alpha
		}
		var t types.HypothesisTest
		switch h.Test {
		case types.TestCorrelation:
			t = correlationTest(in.Dataset, h, in.Targets, a)
		case types.TestTwoGroup:
			t = twoGroupTest(in.Dataset, h, a)
		default:
			t = skipped(h, a, fmt.Sprintf("unknown test %q", h.Test))
		}
		out.Tests = append(out.Tests, t)
	}
	return out
}

// Describe summarizes the non-missing values of variable. Moments that need
// more values than are present are NaN.
func Describe(ds *types.Dataset, variable string) types.Descriptive {
	col, ok := ds.Column(variable)
	var xs stats.Float64Data
	for i, v := range col {
		if ok[i] {
			xs = append(xs, v)
		}
	}
	d := types.Descriptive{Variable: variable, N: len(xs), Missing: len(col) - len(xs)}
	nan := math.NaN()
	d.Mean, d.SD, d.Median, d.Min, d.Max, d.Skewness, d.Kurtosis = nan, nan, nan, nan, nan, nan, nan
	if len(xs) == 0 {
		return d
	}
	d.Mean, _ = xs.Mean()
	d.Median, _ = xs.Median()
	d.Min, _ = xs.Min()
	d.Max, _ = xs.Max()
	if len(xs) > 1 {
		d.SD, _ = xs.StandardDeviationSample()
	}
	if len(xs) > 3 && d.SD > 0 {
		d.Skewness = stat.Skew(xs, nil)
		d.Kurtosis = stat.ExKurtosis(xs, nil)
	}
	return d
}

// correlationTest runs Pearson's r with the Fisher-z test: z = atanh(r)·√(n−3)
// against the standard normal, and the matching confidence interval.
func correlationTest(ds *types.Dataset, h types.Hypothesis, targets []types.TargetCorrelation, alpha float64) types.HypothesisTest {
	vars := h.Variables
	if len(vars) != 2 {
		vars = nil
		for _, t := range targets {
			if t.Hypothesis == h.ID {
				vars = []string{t.A, t.B}
				break
			}
		}
	}
	if vars == nil {
		return skipped(h, alpha, "no variables declared or linked by a target")
	}

	x, okX := ds.Column(vars[0])
	y, okY := ds.Column(vars[1])
	r, n := validation.Pearson(x, y, okX, okY)
	fail := func(reason string) types.HypothesisTest {
		res := skipped(h, alpha, reason)
		res.Variables, res.N = vars, n
		return res
	}
	switch {
	case math.IsNaN(r):
		return fail(fmt.Sprintf("correlation undefined over %d complete pairs", n))
	case n < 4:
		return fail(fmt.Sprintf("need four complete pairs, have %d", n))
	}

	res := base(h, alpha)
	res.Variables = vars
	res.N = n
	res.Effect = r
	se := 1 / math.Sqrt(float64(n-3))
	z := math.Atanh(math.Max(-maxR, math.Min(maxR, r)))
	res.Statistic = z / se
	res.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(res.Statistic))
	half := distuv.UnitNormal.Quantile(1-alpha/2) * se
	res.CILow, res.CIHigh = math.Tanh(z-half), math.Tanh(z+half)
	decide(&res)
	return res
}

// twoGroupTest runs Welch's t test of the outcome between two levels of the
// group, first minus second, with Cohen's d on the pooled SD.
func twoGroupTest(ds *types.Dataset, h types.Hypothesis, alpha float64) types.HypothesisTest {
	if h.Outcome == "" || h.Group == "" {
		return skipped(h, alpha, "outcome and group are required")
	}
	y, ok := ds.Column(h.Outcome)
	groups := make(map[string]stats.Float64Data)
	for i, r := range ds.Respondents {
		label, isLabel := r.Demographics[h.Group].(string)
		if !isLabel || !ok[i] {
			continue
		}
		groups[label] = append(groups[label], y[i])
	}

	levels := h.Levels
	if len(levels) != 2 {
		levels = make([]string, 0, len(groups))
		for l := range groups {
			levels = append(levels, l)
		}
		sort.Strings(levels)
		if len(levels) != 2 {
			return skipped(h, alpha, fmt.Sprintf("group %s has %d observed levels; declare two", h.Group, len(levels)))
		}
	}

	a, b := groups[levels[0]], groups[levels[1]]
	fail := func(reason string) types.HypothesisTest {
		res := skipped(h, alpha, reason)
		res.Variables, res.N = []string{h.Outcome, h.Group}, len(a)+len(b)
		return res
	}
	if len(a) < 2 || len(b) < 2 {
		return fail(fmt.Sprintf("need two observations per group, have %s=%d %s=%d", levels[0], len(a), levels[1], len(b)))
	}

	n1, n2 := float64(len(a)), float64(len(b))
	m1, _ := a.Mean()
	m2, _ := b.Mean()
	v1, _ := a.SampleVariance()
	v2, _ := b.SampleVariance()
	s1, s2 := v1/n1, v2/n2
	se := math.Sqrt(s1 + s2)
	if se == 0 {
		return fail("outcome has no variance within either group")
	}

	res := base(h, alpha)
	res.Variables = []string{h.Outcome, h.Group}
	res.N = len(a) + len(b)

	diff := m1 - m2
	res.Statistic = diff / se
	res.DF = (s1 + s2) * (s1 + s2) / (s1*s1/(n1-1) + s2*s2/(n2-1))
	res.PValue = twoTailedT(res.Statistic, res.DF)
	half := studentsT(res.DF).Quantile(1-alpha/2) * se
	res.CILow, res.CIHigh = diff-half, diff+half
	pooled := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
	res.Effect = diff / pooled
	decide(&res)
	return res
}

func studentsT(df float64) distuv.StudentsT {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
}

func twoTailedT(t, df float64) float64 {
	return 2 * studentsT(df).Survival(math.Abs(t))
}

func base(h types.Hypothesis, alpha float64) types.HypothesisTest {
	return types.HypothesisTest{
		Hypothesis: h.ID,
		Test:       h.Test,
		Expected:   h.EffectSize,
		Alpha:      alpha,
	}
}

func skipped(h types.Hypothesis, alpha float64, reason string) types.HypothesisTest {
	t := base(h, alpha)
	t.Statistic, t.DF, t.PValue = math.NaN(), math.NaN(), math.NaN()
	t.Effect, t.CILow, t.CIHigh = math.NaN(), math.NaN(), math.NaN()
	t.Skipped = reason
	return t
}

// decide sets Significant and Supported. A zero expected effect counts
// any significant direction as support.
func decide(t *types.HypothesisTest) {
	t.Significant = t.PValue < t.Alpha
	t.Supported = t.Significant && (t.Expected == 0 || math.Signbit(t.Expected) == math.Signbit(t.Effect))
}

func carries(ds *types.Dataset, name string) bool {
	for _, d := range ds.Demographics {
		if d == name {
			return true
		}
	}
	return false
}
