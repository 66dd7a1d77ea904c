// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// dataset builds respondents carrying the given scores and, when groups is
// non-nil, a "group" label per respondent.
func dataset(cols map[string][]float64, groups []string) *types.Dataset {
	n := len(groups)
	for _, c := range cols {
		n = len(c)
	}
	ds := &types.Dataset{Respondents: make([]types.Respondent, n)}
	if groups != nil {
		ds.Demographics = []string{"group"}
	}
	for i := range ds.Respondents {
		r := &ds.Respondents[i]
		r.Scores = make(map[string]*float64)
		for name, c := range cols {
			r.Scores[name] = types.FloatPtr(c[i])
		}
		if groups != nil {
			r.Demographics = map[string]any{"group": groups[i]}
		}
	}
	return ds
}

func TestCorrelationTest(t *testing.T) {
	ds := dataset(map[string][]float64{
		"X": {1, 2, 3, 4, 5},
		"Y": {2, 4, 5, 4, 5},
	}, nil)

	tests := []struct {
		name string
		hyp  types.Hypothesis
		tgts []types.TargetCorrelation
	}{
		{"declared variables", types.Hypothesis{ID: "H1", Test: types.TestCorrelation, EffectSize: 0.5, Variables: []string{"X", "Y"}}, nil},
		{"linked target", types.Hypothesis{ID: "H1", Test: types.TestCorrelation, EffectSize: 0.5},
			[]types.TargetCorrelation{{A: "X", B: "Y", R: 0.5, Hypothesis: "H1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(Input{Dataset: ds, Targets: tt.tgts, Hypotheses: []types.Hypothesis{tt.hyp}})
			require.Len(t, a.Tests, 1)
			got := a.Tests[0]
			assert.Empty(t, got.Skipped)
			assert.Equal(t, []string{"X", "Y"}, got.Variables)
			assert.Equal(t, 5, got.N)
			assert.InDelta(t, 0.7746, got.Effect, 1e-4)
			assert.InDelta(t, 1.4590, got.Statistic, 1e-4)
			assert.Zero(t, got.DF)
			assert.InDelta(t, 0.1446, got.PValue, 1e-4)
			assert.InDelta(t, -0.3401, got.CILow, 1e-3)
			assert.InDelta(t, 0.9842, got.CIHigh, 1e-3)
			assert.Equal(t, DefaultAlpha, got.Alpha)
			assert.False(t, got.Significant)
			assert.False(t, got.Supported)
		})
	}

	hyp := types.Hypothesis{ID: "H1", Test: types.TestCorrelation, EffectSize: 0.5, Variables: []string{"X", "Y"}}
	perfect := dataset(map[string][]float64{"X": {1, 2, 3, 4, 5, 6}, "Y": {2, 4, 6, 8, 10, 12}}, nil)
	got := Analyze(Input{Dataset: perfect, Hypotheses: []types.Hypothesis{hyp}}).Tests[0]
	assert.InDelta(t, 1.0, got.Effect, 1e-12)
	assert.Less(t, got.PValue, 1e-6)
	assert.False(t, math.IsInf(got.CILow, 0))
	assert.True(t, got.Supported)

	short := dataset(map[string][]float64{"X": {1, 2, 3}, "Y": {3, 1, 2}}, nil)
	got = Analyze(Input{Dataset: short, Hypotheses: []types.Hypothesis{hyp}}).Tests[0]
	assert.Contains(t, got.Skipped, "four complete pairs")
	assert.Equal(t, 3, got.N)
}

func TestTwoGroupTest(t *testing.T) {
	scores := []float64{5, 6, 7, 8, 9, 1, 2, 3, 4, 5, 6, 7}
	groups := []string{"a", "a", "a", "a", "a", "b", "b", "b", "b", "b", "b", "b"}
	ds := dataset(map[string][]float64{"Y": scores}, groups)

	for _, levels := range [][]string{{"a", "b"}, nil} {
		a := Analyze(Input{Dataset: ds, Hypotheses: []types.Hypothesis{
			{ID: "H2", Test: types.TestTwoGroup, EffectSize: 0.8, Outcome: "Y", Group: "group", Levels: levels},
		}})
		got := a.Tests[0]
		require.Empty(t, got.Skipped, "levels %v", levels)
		assert.Equal(t, 12, got.N)
		assert.InDelta(t, 2.7775, got.Statistic, 1e-4)
		assert.InDelta(t, 9.9661, got.DF, 1e-4)
		assert.InDelta(t, 0.0196, got.PValue, 1e-3)
		assert.InDelta(t, 1.5390, got.Effect, 1e-4)
		assert.Less(t, got.CILow, 3.0)
		assert.Greater(t, got.CIHigh, 3.0)
		assert.Greater(t, got.CILow, 0.0, "significant at .05, so the interval excludes zero")
		assert.True(t, got.Significant)
		assert.True(t, got.Supported)
	}

	reversed := Analyze(Input{Dataset: ds, Hypotheses: []types.Hypothesis{
		{ID: "H2", Test: types.TestTwoGroup, EffectSize: 0.8, Outcome: "Y", Group: "group", Levels: []string{"b", "a"}},
	}}).Tests[0]
	assert.InDelta(t, -1.5390, reversed.Effect, 1e-4)
	assert.True(t, reversed.Significant)
	assert.False(t, reversed.Supported, "effect runs against the expected direction")
}

func TestAnalyzeSkipsUntestableHypotheses(t *testing.T) {
	ds := dataset(map[string][]float64{
		"X": {1, 2, 3, 4},
		"C": {3, 3, 3, 3},
	}, []string{"a", "b", "c", "a"})

	tests := []struct {
		name string
		hyp  types.Hypothesis
		want string
	}{
		{"no variables", types.Hypothesis{ID: "H", Test: types.TestCorrelation}, "no variables"},
		{"constant variable", types.Hypothesis{ID: "H", Test: types.TestCorrelation, Variables: []string{"X", "C"}}, "undefined"},
		{"missing group", types.Hypothesis{ID: "H", Test: types.TestTwoGroup, Outcome: "X"}, "required"},
		{"three levels", types.Hypothesis{ID: "H", Test: types.TestTwoGroup, Outcome: "X", Group: "group"}, "3 observed levels"},
		{"tiny group", types.Hypothesis{ID: "H", Test: types.TestTwoGroup, Outcome: "X", Group: "group", Levels: []string{"a", "b"}}, "two observations"},
		{"no variance", types.Hypothesis{ID: "H", Test: types.TestTwoGroup, Outcome: "C", Group: "group", Levels: []string{"a", "a"}}, "no variance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(Input{Dataset: ds, Hypotheses: []types.Hypothesis{tt.hyp}}).Tests[0]
			assert.Contains(t, got.Skipped, tt.want)
			assert.True(t, math.IsNaN(got.PValue))
			assert.False(t, got.Significant)

			safe := types.Analysis{Tests: []types.HypothesisTest{got}}.JSONSafe()
			assert.Equal(t, 0.0, safe.Tests[0].PValue)
		})
	}
}

func TestDescribe(t *testing.T) {
	ds := dataset(map[string][]float64{"X": {1, 2, 3, 4, 10}}, nil)
	ds.Respondents[4].Scores["X"] = nil

	d := Describe(ds, "X")
	assert.Equal(t, 4, d.N)
	assert.Equal(t, 1, d.Missing)
	assert.Equal(t, 2.5, d.Mean)
	assert.Equal(t, 2.5, d.Median)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 4.0, d.Max)
	assert.InDelta(t, 1.2910, d.SD, 1e-4)
	assert.InDelta(t, 0, d.Skewness, 1e-12)

	empty := Describe(ds, "nothing")
	assert.Equal(t, 0, empty.N)
	assert.True(t, math.IsNaN(empty.Mean))
}

func TestAnalyzeDescribesScoresAndNumericDemographics(t *testing.T) {
	in := types.Instrument{
		Name:      "S",
		Scale:     types.ScaleRange{Min: 1, Max: 5},
		Subscales: []types.Subscale{{Name: "A"}},
	}
	ds := &types.Dataset{Instruments: []types.Instrument{in}, Demographics: []string{"age", "gender"}}
	for i := 0; i < 6; i++ {
		ds.Respondents = append(ds.Respondents, types.Respondent{
			Scores:       map[string]*float64{"S.A": types.FloatPtr(float64(i%5 + 1)), "S": types.FloatPtr(float64(i%5 + 1))},
			Demographics: map[string]any{"age": float64(30 + i), "gender": "female"},
		})
	}
	rel := []types.ReliabilityCheck{{Subscale: "S.A", Items: 2, N: 6, Alpha: 0.8}}
	a := Analyze(Input{
		Dataset: ds,
		Demographics: []types.Demographic{
			{Name: "age", Kind: types.DemographicNumeric},
			{Name: "gender", Kind: types.DemographicCategorical},
			{Name: "tenure", Kind: types.DemographicNumeric},
		},
		Reliability: rel,
	})

	var names []string
	for _, d := range a.Descriptives {
		names = append(names, d.Variable)
	}
	assert.Equal(t, []string{"S.A", "S", "age"}, names)
	assert.Equal(t, 32.5, a.Descriptives[2].Mean)
	assert.Equal(t, rel, a.Reliability)
	assert.Empty(t, a.Tests)
}
