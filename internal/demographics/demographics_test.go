// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package demographics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/thesis-engine/internal/sampler"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

func age() types.Demographic {
	return types.Demographic{Name: "age", Kind: types.DemographicNumeric, Mean: 35, Std: 10, Min: 18, Max: 70, Integer: true}
}

func gender() types.Demographic {
	return types.Demographic{Name: "gender", Kind: types.DemographicCategorical, Categories: []types.Category{
		{Name: "female", Weight: 0.6},
		{Name: "male", Weight: 0.35},
		{Name: "other", Weight: 0.05},
	}}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate([]types.Demographic{age(), gender()}))

	badWeights := gender()
	badWeights.Categories[0].Weight = 0.5

	negative := gender()
	negative.Categories[2].Weight = -0.05
	negative.Categories[0].Weight = 0.7

	noStd := age()
	noStd.Std = 0

	inverted := age()
	inverted.Min, inverted.Max = 70, 18

	tests := []struct {
		name string
		defs []types.Demographic
	}{
		{name: "weights off by 0.1", defs: []types.Demographic{badWeights}},
		{name: "negative weight", defs: []types.Demographic{negative}},
		{name: "zero std", defs: []types.Demographic{noStd}},
		{name: "inverted bounds", defs: []types.Demographic{inverted}},
		{name: "duplicate", defs: []types.Demographic{age(), age()}},
		{name: "unknown kind", defs: []types.Demographic{{Name: "x", Kind: "ordinal"}}},
		{name: "no categories", defs: []types.Demographic{{Name: "x", Kind: types.DemographicCategorical}}},
		{name: "unnamed", defs: []types.Demographic{{Kind: types.DemographicNumeric, Std: 1, Max: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.defs)
			require.Error(t, err)
			assert.True(t, types.IsConfigError(err))
		})
	}
}

func TestCategoricalFrequencies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	labels := Categorical(rng, gender(), 10000)

	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	assert.InDelta(t, 0.60, float64(counts["female"])/10000, 0.02)
	assert.InDelta(t, 0.35, float64(counts["male"])/10000, 0.02)
	assert.InDelta(t, 0.05, float64(counts["other"])/10000, 0.01)
}

func TestCategoricalSkipsZeroWeight(t *testing.T) {
	d := types.Demographic{Name: "site", Kind: types.DemographicCategorical, Categories: []types.Category{
		{Name: "closed", Weight: 0},
		{Name: "open", Weight: 1},
	}}
	for _, l := range Categorical(rand.New(rand.NewSource(2)), d, 500) {
		assert.Equal(t, "open", l)
	}
}

func TestAssign(t *testing.T) {
	defs := []types.Demographic{age(), gender()}
	assert.Equal(t, []string{"age"}, Numeric(defs))

	margs := Marginals(defs)
	require.Contains(t, margs, "age")
	assert.True(t, margs["age"].Continuous)
	assert.NotContains(t, margs, "gender")

	s := &sampler.Sample{Vars: []string{"age"}, Columns: [][]float64{{20, 30, 40}}}
	rs := make([]types.Respondent, 3)
	Assign(rand.New(rand.NewSource(3)), defs, s, rs)

	for i, r := range rs {
		assert.Equal(t, s.Columns[0][i], r.Demographics["age"])
		assert.Contains(t, []string{"female", "male", "other"}, r.Demographics["gender"])
	}
}
