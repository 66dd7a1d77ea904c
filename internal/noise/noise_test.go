// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package noise

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

func testDataset(respondents, items int) *types.Dataset {
	in := types.Instrument{
		Name:      "EQI",
		Scale:     types.ScaleRange{Min: 1, Max: 5},
		Subscales: []types.Subscale{{Name: "A"}},
	}
	for j := 0; j < items; j++ {
		in.Items = append(in.Items, types.Item{ID: fmt.Sprintf("q%02d", j+1), Subscale: "A"})
	}
	ds := &types.Dataset{Instruments: []types.Instrument{in}}
	for i := 0; i < respondents; i++ {
		r := types.Respondent{ID: fmt.Sprintf("r%04d", i), Responses: map[string]*int{}}
		for j, it := range in.Items {
			r.Responses[it.ID] = types.IntPtr(1 + (i+j)%5)
		}
		ds.Respondents = append(ds.Respondents, r)
	}
	return ds
}

func missingCells(ds *types.Dataset) map[string]bool {
	out := make(map[string]bool)
	for _, r := range ds.Respondents {
		for id, v := range r.Responses {
			if v == nil {
				out[r.ID+"/"+id] = true
			}
		}
	}
	return out
}

func TestInjectDeterministic(t *testing.T) {
	cfg := types.NoiseConfig{CarelessRate: 0.05, MissingRate: 0.03}
	a := testDataset(200, 10)
	b := a.Clone()

	sa, err := Inject(a, cfg, 7)
	require.NoError(t, err)
	sb, err := Inject(b, cfg, 7)
	require.NoError(t, err)

	assert.Equal(t, sa, sb)
	assert.Equal(t, a, b)

	c := testDataset(200, 10)
	_, err = Inject(c, cfg, 8)
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "different seed, different contamination")
}

func TestCarelessRespondents(t *testing.T) {
	ds := testDataset(200, 10)
	s, err := Inject(ds, types.NoiseConfig{CarelessRate: 0.05}, 11)
	require.NoError(t, err)

	assert.Equal(t, 10, s.Careless)
	assert.Equal(t, s.Careless, s.StraightLine+s.Random)
	assert.Zero(t, s.MissingCells)

	marked := 0
	for _, r := range ds.Respondents {
		for _, v := range r.Responses {
			require.NotNil(t, v)
			assert.True(t, ds.Instruments[0].Scale.Contains(*v))
		}
		switch r.Careless {
		case types.CarelessStraightLine:
			marked++
			first := *r.Responses["q01"]
			for _, v := range r.Responses {
				assert.Equal(t, first, *v, "straight-lined respondent %s", r.ID)
			}
		case types.CarelessRandom:
			marked++
		}
	}
	assert.Equal(t, 10, marked)
}

func TestMissingRateBound(t *testing.T) {
	const p = 0.02
	ds := testDataset(1000, 10)
	s, err := Inject(ds, types.NoiseConfig{MissingRate: p}, 3)
	require.NoError(t, err)

	assert.Equal(t, 10000, s.TotalCells)
	assert.Equal(t, s.MissingCells, len(missingCells(ds)))
	share := float64(s.MissingCells) / float64(s.TotalCells)
	assert.Greater(t, share, 0.0)
	assert.LessOrEqual(t, share, 3*p)
	assert.InDelta(t, p, share, 0.01)
}

func TestMissingNeverRestoresOrRecounts(t *testing.T) {
	ds := testDataset(50, 4)
	ds.Respondents[0].Responses["q01"] = nil

	s, err := Inject(ds, types.NoiseConfig{MissingRate: 1}, 5)
	require.NoError(t, err)
	assert.Equal(t, 50*4-1, s.MissingCells)
	assert.Len(t, missingCells(ds), 50*4)
}

func TestMissingIndependentOfCarelessPass(t *testing.T) {
	clean := testDataset(300, 8)
	_, err := Inject(clean, types.NoiseConfig{MissingRate: 0.1}, 21)
	require.NoError(t, err)

	noisy := testDataset(300, 8)
	s, err := Inject(noisy, types.NoiseConfig{CarelessRate: 0.5, MissingRate: 0.1}, 21)
	require.NoError(t, err)

	assert.Equal(t, missingCells(clean), missingCells(noisy))

	nulledCareless := false
	for _, r := range noisy.Respondents {
		if r.Careless == types.CarelessNone {
			continue
		}
		for _, v := range r.Responses {
			if v == nil {
				nulledCareless = true
			}
		}
	}
	assert.Equal(t, 150, s.Careless)
	assert.True(t, nulledCareless, "careless respondents stay eligible for missingness")
}

func TestInjectRejectsBadRates(t *testing.T) {
	tests := []types.NoiseConfig{
		{CarelessRate: -0.1},
		{CarelessRate: 1.5},
		{MissingRate: -1},
		{MissingRate: 2},
	}
	for _, cfg := range tests {
		_, err := Inject(testDataset(5, 2), cfg, 1)
		require.Error(t, err)
		assert.True(t, types.IsConfigError(err))
	}
}
