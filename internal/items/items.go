// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package items expands subscale-level scores into correlated item responses.
package items

import (
	"math"
	"math/rand"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Expand generates one response column per item from the per-respondent base
// scores of a subscale:
//
//	value = clip(round(base + N(0, noiseScale·width)))
//
// Reverse-keyed items are stored the way a respondent would answer them
// (Max + Min − value), so the scorer has to invert them again. The random
// stream is consumed row by row, item by item.
func Expand(rng *rand.Rand, base []float64, its []types.Item, scale types.ScaleRange, noiseScale float64) [][]int {
	sd := math.Max(0, noiseScale) * float64(scale.Width())
	cols := make([][]int, len(its))
	for j := range cols {
		cols[j] = make([]int, len(base))
	}
	for row, b := range base {
		for j, it := range its {
			v := b
			if sd > 0 {
				v += rng.NormFloat64() * sd
			}
			value := scale.Clip(int(math.Round(v)))
			if it.Reverse {
				value = scale.Reverse(value)
			}
			cols[j][row] = value
		}
	}
	return cols
}

// InterItemCorrelation returns the average inter-item correlation that
// yields Cronbach's alpha for k items (Spearman–Brown solved for ρ).
func InterItemCorrelation(alpha float64, k int) float64 {
	if k < 2 {
		return math.NaN()
	}
	kf := float64(k)
	return alpha / (kf - (kf-1)*alpha)
}

// SuggestNoiseScale returns the noise scale expected to give targetAlpha for
// a subscale of k items whose base scores spread uniformly over the range
// (base SD ≈ width/√12). Rounding and clipping are ignored, so the achieved
// alpha lands slightly lower. NaN is returned for alpha outside (0, 1) or
// k < 2.
func SuggestNoiseScale(targetAlpha float64, k int) float64 {
	if targetAlpha <= 0 || targetAlpha >= 1 || k < 2 {
		return math.NaN()
	}
	rho := InterItemCorrelation(targetAlpha, k)
	return math.Sqrt((1/rho - 1) / 12)
}

// ExpectedReliability is the reliability of the mean of k items expanded
// from a base spread uniformly over scale with the given noise scale:
//
//	var(base) / (var(base) + var(noise)/k)
//
// where var(base) is the discrete uniform variance over the range. Zero
// noise and single-value scales give 1.
func ExpectedReliability(k int, scale types.ScaleRange, noiseScale float64) float64 {
	if k < 1 {
		return math.NaN()
	}
	w := float64(scale.Width())
	vb := ((w+1)*(w+1) - 1) / 12
	sd := math.Max(0, noiseScale) * w
	if vb == 0 {
		return 1
	}
	return vb / (vb + sd*sd/float64(k))
}
