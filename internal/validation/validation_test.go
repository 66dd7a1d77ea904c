// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

func TestClassifyCorrelation(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		achieved float64
		want     types.CorrelationStatus
	}{
		{name: "stronger negative exceeds", target: -0.50, achieved: -0.65, want: types.CorrExceeded},
		{name: "equal magnitude exceeds", target: 0.30, achieved: 0.30, want: types.CorrExceeded},
		{name: "within tolerance", target: 0.50, achieved: 0.40, want: types.CorrMet},
		{name: "weaker but close", target: -0.40, achieved: -0.30, want: types.CorrMet},
		{name: "too weak", target: 0.50, achieved: 0.20, want: types.CorrBelow},
		{name: "wrong sign", target: 0.30, achieved: -0.35, want: types.CorrBelow},
		{name: "zero target near zero", target: 0, achieved: 0.1, want: types.CorrMet},
		{name: "undefined", target: 0.30, achieved: math.NaN(), want: types.CorrBelow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCorrelation(tt.target, tt.achieved, types.DefaultTolerance))
		})
	}
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{6, 8, 3, 7, 2, 5, 1, 4}
	all := []bool{true, true, true, true, true, true, true, true}

	r, n := Pearson(x, y, all, all)
	assert.Equal(t, 8, n)
	assert.InDelta(t, -0.5714, r, 1e-4)

	partial := []bool{true, true, true, true, true, true, false, false}
	_, n = Pearson(x, y, all, partial)
	assert.Equal(t, 6, n, "pairwise deletion")

	flat := []float64{3, 3, 3, 3, 3, 3, 3, 3}
	r, _ = Pearson(x, flat, all, all)
	assert.True(t, math.IsNaN(r), "zero variance is undefined")

	r, n = Pearson(x[:2], y[:2], all[:2], all[:2])
	assert.True(t, math.IsNaN(r))
	assert.Equal(t, 2, n)
}

func TestCronbachAlpha(t *testing.T) {
	assert.InDelta(t, 1.0, CronbachAlpha([][]float64{{1, 2, 3}, {1, 2, 3}}), 1e-12)
	assert.InDelta(t, 0.75, CronbachAlpha([][]float64{{1, 2, 3, 4}, {2, 1, 4, 3}}), 1e-12)

	assert.True(t, math.IsNaN(CronbachAlpha([][]float64{{1, 2, 3}})), "single item")
	assert.True(t, math.IsNaN(CronbachAlpha([][]float64{{2, 2, 2}, {4, 4, 4}})), "no total variance")
	assert.True(t, math.IsNaN(CronbachAlpha([][]float64{{1}, {2}})), "single row")
}

func TestClassifyAlpha(t *testing.T) {
	tests := []struct {
		alpha float64
		want  types.ReliabilityStatus
	}{
		{0.95, types.ReliabilityExcellent},
		{0.90, types.ReliabilityExcellent},
		{0.85, types.ReliabilityGood},
		{0.70, types.ReliabilityAcceptable},
		{0.69, types.ReliabilityQuestionable},
		{0.60, types.ReliabilityQuestionable},
		{0.59, types.ReliabilityPoor},
		{-0.2, types.ReliabilityPoor},
		{math.NaN(), types.ReliabilityUndefined},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyAlpha(tt.alpha), "alpha %v", tt.alpha)
	}
}

func TestCorrelationPower(t *testing.T) {
	power := CorrelationPower(0.30, 30, 0.05)
	assert.InDelta(t, 0.3627, power, 0.005)
	assert.Less(t, power, 0.80)

	minN := CorrelationMinN(0.30, 0.05, 0.80)
	assert.Equal(t, 85, minN)
	assert.Greater(t, minN, 30)

	assert.Greater(t, CorrelationPower(0.30, minN, 0.05), 0.80)
	assert.Less(t, CorrelationPower(0.30, minN-1, 0.05), 0.80+1e-9)

	assert.InDelta(t, CorrelationPower(0.3, 50, 0.05), CorrelationPower(-0.3, 50, 0.05), 1e-12, "two-tailed")
	assert.True(t, math.IsNaN(CorrelationPower(0.3, 3, 0.05)))
	assert.Zero(t, CorrelationMinN(0, 0.05, 0.80))
}

func TestTwoGroupPower(t *testing.T) {
	power := TwoGroupPower(0.5, 128, 0.05)
	assert.InDelta(t, 0.807, power, 0.005)
	assert.Equal(t, 126, TwoGroupMinN(0.5, 0.05, 0.80))
	assert.True(t, math.IsNaN(TwoGroupPower(0.5, 3, 0.05)))
	assert.Zero(t, TwoGroupMinN(0, 0.05, 0.80))
}

func TestCheckPowerPrimaryDefaults(t *testing.T) {
	hyps := []types.Hypothesis{
		{ID: "H1", Test: types.TestCorrelation, EffectSize: 0.3},
		{ID: "H2", Test: types.TestTwoGroup, EffectSize: 0.5, Alpha: 0.01},
	}
	checks := CheckPower(hyps, 100, 0.05, 0.80)
	require.Len(t, checks, 2)
	assert.True(t, checks[0].Primary, "no primary declared: all are primary")
	assert.True(t, checks[1].Primary)
	assert.Equal(t, 0.05, checks[0].Alpha)
	assert.Equal(t, 0.01, checks[1].Alpha)

	hyps[0].Primary = true
	checks = CheckPower(hyps, 100, 0.05, 0.80)
	assert.True(t, checks[0].Primary)
	assert.False(t, checks[1].Primary)
}

func defaultValidation() types.ValidationConfig {
	return types.DefaultPipelineConfig().Validation
}

func TestDiagnoseFlags(t *testing.T) {
	skewed := make([]float64, 100)
	for i := range skewed {
		skewed[i] = 1
		if i >= 95 {
			skewed[i] = 5
		}
	}
	c := Diagnose("X", skewed, 1, 5, defaultValidation())
	assert.Contains(t, c.Flags, types.FlagExtremeSkew)
	assert.Contains(t, c.Flags, types.FlagExtremeKurtosis)
	assert.Contains(t, c.Flags, types.FlagFloorEffect)
	assert.NotContains(t, c.Flags, types.FlagCeilingEffect)
	assert.True(t, c.Severe)
	assert.InDelta(t, 0.95, c.FloorShare, 1e-12)

	flat := []float64{3, 3, 3, 3, 3, 3}
	c = Diagnose("Y", flat, 1, 5, defaultValidation())
	assert.Equal(t, []types.DistributionFlag{types.FlagLowVariance}, c.Flags)
	assert.False(t, c.Severe)

	spread := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 2, 3, 4}
	c = Diagnose("Z", spread, 1, 5, defaultValidation())
	assert.Empty(t, c.Flags)

	c = Diagnose("W", []float64{1, 2}, 1, 5, defaultValidation())
	assert.Equal(t, []types.DistributionFlag{types.FlagUndefined}, c.Flags)
}

// scoreDataset builds a dataset whose respondents carry only scores.
func scoreDataset(cols map[string][]float64) *types.Dataset {
	n := 0
	for _, c := range cols {
		n = len(c)
	}
	ds := &types.Dataset{Respondents: make([]types.Respondent, n)}
	for i := range ds.Respondents {
		ds.Respondents[i].Scores = make(map[string]*float64)
		for name, c := range cols {
			ds.Respondents[i].Scores[name] = types.FloatPtr(c[i])
		}
	}
	return ds
}

func TestValidateExceededIsNeverAConcern(t *testing.T) {
	ds := scoreDataset(map[string][]float64{
		"A": {1, 2, 3, 4, 5, 6, 7, 8},
		"B": {6, 8, 3, 7, 2, 5, 1, 4},
	})
	report := Validate(Input{
		Dataset: ds,
		Targets: []types.TargetCorrelation{{A: "A", B: "B", R: -0.50}},
	})

	require.Len(t, report.Correlations, 1)
	assert.Equal(t, types.CorrExceeded, report.Correlations[0].Status)
	assert.Empty(t, report.Concerns)
	assert.Equal(t, types.VerdictProceed, report.Verdict)
}

func TestValidateCorrelationMisses(t *testing.T) {
	ds := scoreDataset(map[string][]float64{
		"A": {1, 2, 3, 4, 5, 6, 7, 8},
		"B": {2, 1, 4, 3, 6, 5, 8, 7},
		"C": {6, 8, 3, 7, 2, 5, 1, 4},
	})

	one := Validate(Input{Dataset: ds, Targets: []types.TargetCorrelation{
		{A: "A", B: "B", R: -0.3},
	}})
	assert.Equal(t, types.VerdictCaution, one.Verdict, "a single miss is minor")
	assert.Len(t, one.Concerns, 1)

	two := Validate(Input{Dataset: ds, Targets: []types.TargetCorrelation{
		{A: "A", B: "B", R: -0.3},
		{A: "A", B: "C", R: 0.4},
	}})
	assert.Equal(t, types.VerdictRegenerate, two.Verdict, "two misses beyond 0.20")
}

func TestJudgeCorrelationsCountsMinorMisses(t *testing.T) {
	below := func(target, achieved float64) types.CorrelationCheck {
		return types.CorrelationCheck{A: "x", B: "y", Target: target, Achieved: achieved, Tolerance: 0.05, Status: types.CorrBelow}
	}
	v, concerns := judgeCorrelations([]types.CorrelationCheck{below(0.5, 0.4), below(0.5, 0.4)})
	assert.Equal(t, types.VerdictCaution, v)
	assert.Len(t, concerns, 2)

	v, _ = judgeCorrelations([]types.CorrelationCheck{below(0.5, 0.4), below(0.5, 0.4), below(0.5, 0.4)})
	assert.Equal(t, types.VerdictRegenerate, v)

	v, concerns = judgeCorrelations([]types.CorrelationCheck{
		{Status: types.CorrExceeded, Target: -0.5, Achieved: -0.65},
		{Status: types.CorrMet, Target: 0.3, Achieved: 0.25},
	})
	assert.Equal(t, types.VerdictProceed, v)
	assert.Empty(t, concerns)
}

func TestValidatePowerVerdicts(t *testing.T) {
	ds := scoreDataset(map[string][]float64{"A": make([]float64, 30)})

	report := Validate(Input{Dataset: ds, Hypotheses: []types.Hypothesis{
		{ID: "H1", Test: types.TestCorrelation, EffectSize: 0.30, Primary: true},
	}})
	require.Len(t, report.Power, 1)
	assert.Equal(t, types.VerdictRegenerate, report.Verdict, "power 0.36 < 0.50")
	assert.Equal(t, 85, report.Power[0].MinN)

	report = Validate(Input{Dataset: ds, Hypotheses: []types.Hypothesis{
		{ID: "H1", Test: types.TestCorrelation, EffectSize: 0.45, Primary: true},
	}})
	assert.Equal(t, types.VerdictCaution, report.Verdict, "power between 0.50 and 0.80")

	report = Validate(Input{Dataset: ds, Hypotheses: []types.Hypothesis{
		{ID: "H1", Test: types.TestCorrelation, EffectSize: 0.60, Primary: true},
		{ID: "H2", Test: types.TestCorrelation, EffectSize: 0.10},
	}})
	assert.Equal(t, types.VerdictProceed, report.Verdict, "secondary power does not gate")
}

func TestValidateReliabilityVerdicts(t *testing.T) {
	in := types.Instrument{
		Name:      "S",
		Scale:     types.ScaleRange{Min: 1, Max: 5},
		Subscales: []types.Subscale{{Name: "A"}},
		Items: []types.Item{
			{ID: "a1", Subscale: "A"},
			{ID: "a2", Subscale: "A", Reverse: true},
		},
	}
	// a2 is reverse keyed and answered as the mirror of a1, so the keyed
	// items agree perfectly.
	rows := [][2]int{{1, 5}, {2, 4}, {3, 3}, {4, 2}, {5, 1}, {2, 4}, {3, 3}, {4, 2}}
	ds := &types.Dataset{Instruments: []types.Instrument{in}}
	for _, row := range rows {
		ds.Respondents = append(ds.Respondents, types.Respondent{
			Responses: map[string]*int{"a1": types.IntPtr(row[0]), "a2": types.IntPtr(row[1])},
			Scores:    map[string]*float64{},
		})
	}
	checks := CheckReliability(ds)
	require.Len(t, checks, 1)
	assert.Equal(t, "S.A", checks[0].Subscale)
	assert.InDelta(t, 1.0, checks[0].Alpha, 1e-12)
	assert.Equal(t, types.ReliabilityExcellent, checks[0].Status)

	// Without reverse keying the same answers are perfectly inconsistent.
	ds.Instruments[0].Items[1].Reverse = false
	checks = CheckReliability(ds)
	assert.Equal(t, types.ReliabilityUndefined, checks[0].Status, "summed score has no variance")
}

func TestCheckDistributionsCoversNumericDemographics(t *testing.T) {
	age := types.Demographic{Name: "age", Kind: types.DemographicNumeric, Min: 18, Max: 65}
	gender := types.Demographic{Name: "gender", Kind: types.DemographicCategorical}
	income := types.Demographic{Name: "income", Kind: types.DemographicNumeric, Min: 0, Max: 10}

	// Half the sample sits on the lower bound.
	var ds types.Dataset
	ds.Demographics = []string{"age", "gender"}
	for i := 0; i < 40; i++ {
		a := 18.0
		if i%2 == 1 {
			a = 20 + float64(i)
		}
		ds.Respondents = append(ds.Respondents, types.Respondent{
			Demographics: map[string]any{"age": a, "gender": "female"},
		})
	}

	checks := CheckDistributions(&ds, []types.Demographic{age, gender, income}, defaultValidation())
	require.Len(t, checks, 1, "categorical and absent variables are skipped")
	assert.Equal(t, "age", checks[0].Variable)
	assert.Equal(t, 40, checks[0].N)
	assert.InDelta(t, 0.5, checks[0].FloorShare, 1e-12)
	assert.Contains(t, checks[0].Flags, types.FlagFloorEffect)
	assert.True(t, checks[0].Severe)

	report := Validate(Input{Dataset: &ds, Demographics: []types.Demographic{age, gender}})
	assert.Equal(t, types.VerdictRegenerate, report.Verdict)
	require.Len(t, report.Concerns, 1)
	assert.Contains(t, report.Concerns[0], "distribution of age")

	report = Validate(Input{Dataset: &ds})
	assert.Empty(t, report.Distribution, "no definitions, no demographic checks")
}
