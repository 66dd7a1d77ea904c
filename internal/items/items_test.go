// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package items

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/thesis-engine/internal/validation"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

var likert5 = types.ScaleRange{Min: 1, Max: 5}

func spreadBase(rng *rand.Rand, n int, r types.ScaleRange) []float64 {
	base := make([]float64, n)
	for i := range base {
		base[i] = float64(r.Min + rng.Intn(r.Width()+1))
	}
	return base
}

func plainItems(k int) []types.Item {
	its := make([]types.Item, k)
	for i := range its {
		its[i] = types.Item{ID: string(rune('a' + i)), Subscale: "S"}
	}
	return its
}

func toFloat(cols [][]int) [][]float64 {
	out := make([][]float64, len(cols))
	for j, c := range cols {
		out[j] = make([]float64, len(c))
		for i, v := range c {
			out[j][i] = float64(v)
		}
	}
	return out
}

func TestExpandStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	base := []float64{1, 5, 3, -20, 40}
	its := append(plainItems(3), types.Item{ID: "r", Subscale: "S", Reverse: true})

	for _, noise := range []float64{0, 0.5, 10, 1000} {
		cols := Expand(rng, base, its, likert5, noise)
		require.Len(t, cols, len(its))
		for _, col := range cols {
			require.Len(t, col, len(base))
			for _, v := range col {
				assert.True(t, likert5.Contains(v), "noise %v produced %d", noise, v)
			}
		}
	}
}

func TestExpandZeroNoiseCopiesBase(t *testing.T) {
	base := []float64{1, 2, 3, 4, 5}
	its := []types.Item{{ID: "x", Subscale: "S"}, {ID: "y", Subscale: "S", Reverse: true}}

	cols := Expand(rand.New(rand.NewSource(1)), base, its, likert5, 0)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cols[0])
	assert.Equal(t, []int{5, 4, 3, 2, 1}, cols[1], "reverse-keyed item stored as answered")
}

func TestExpandNoiseLowersAlpha(t *testing.T) {
	base := spreadBase(rand.New(rand.NewSource(2)), 400, likert5)

	prev := math.Inf(1)
	for _, noise := range []float64{0.1, 0.2, 0.35, 0.6} {
		cols := Expand(rand.New(rand.NewSource(3)), base, plainItems(6), likert5, noise)
		alpha := validation.CronbachAlpha(toFloat(cols))
		assert.Less(t, alpha, prev, "noise %v", noise)
		prev = alpha
	}
}

func TestSuggestNoiseScaleHitsAlphaBand(t *testing.T) {
	const k = 8
	noise := SuggestNoiseScale(0.80, k)
	require.False(t, math.IsNaN(noise))

	base := spreadBase(rand.New(rand.NewSource(8)), 1000, likert5)
	cols := Expand(rand.New(rand.NewSource(9)), base, plainItems(k), likert5, noise)
	alpha := validation.CronbachAlpha(toFloat(cols))
	assert.InDelta(t, 0.80, alpha, 0.08)
}

func TestInterItemCorrelation(t *testing.T) {
	assert.InDelta(t, 0.4444, InterItemCorrelation(0.8, 5), 1e-4)
	assert.True(t, math.IsNaN(InterItemCorrelation(0.8, 1)))
	assert.True(t, math.IsNaN(SuggestNoiseScale(1.2, 5)))
	assert.True(t, math.IsNaN(SuggestNoiseScale(0.8, 1)))
}

func TestExpectedReliability(t *testing.T) {
	scale := types.ScaleRange{Min: 1, Max: 5}
	assert.Equal(t, 1.0, ExpectedReliability(4, scale, 0))
	// var(base) = 2, var(noise) = 1, k = 4.
	assert.InDelta(t, 2/2.25, ExpectedReliability(4, scale, 0.25), 1e-12)
	assert.Less(t, ExpectedReliability(4, scale, 0.5), ExpectedReliability(8, scale, 0.5))
	assert.True(t, math.IsNaN(ExpectedReliability(0, scale, 0.25)))
	assert.Equal(t, 1.0, ExpectedReliability(3, types.ScaleRange{Min: 3, Max: 3}, 0.25))
}
