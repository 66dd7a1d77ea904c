// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validation

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// ClassifyCorrelation compares an achieved coefficient with its target:
// EXCEEDED when it has the target's sign and at least its magnitude, MET
// when within tol of the target, BELOW otherwise. NaN is always BELOW.
func ClassifyCorrelation(target, achieved, tol float64) types.CorrelationStatus {
	if math.IsNaN(achieved) {
		return types.CorrBelow
	}
	if target*achieved > 0 && math.Abs(achieved) >= math.Abs(target) {
		return types.CorrExceeded
	}
	if math.Abs(achieved-target) <= tol {
		return types.CorrMet
	}
	return types.CorrBelow
}

// Pearson returns the correlation of x and y over the rows where both are
// present, and the number of such rows. It returns NaN when fewer than three
// complete pairs exist or either variable has zero variance.
func Pearson(x, y []float64, okX, okY []bool) (float64, int) {
	var xs, ys stats.Float64Data
	for i := range x {
		if i < len(y) && okX[i] && okY[i] {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	n := len(xs)
	if n < 3 {
		return math.NaN(), n
	}
	sx, _ := stats.StandardDeviationPopulation(xs)
	sy, _ := stats.StandardDeviationPopulation(ys)
	if sx == 0 || sy == 0 {
		return math.NaN(), n
	}
	r, err := stats.Correlation(xs, ys)
	if err != nil {
		return math.NaN(), n
	}
	return r, n
}

// CheckCorrelations evaluates every target against the dataset's scores and
// numeric demographics.
func CheckCorrelations(ds *types.Dataset, targets []types.TargetCorrelation) []types.CorrelationCheck {
	checks := make([]types.CorrelationCheck, 0, len(targets))
	for _, t := range targets {
		x, okX := ds.Column(t.A)
		y, okY := ds.Column(t.B)
		r, n := Pearson(x, y, okX, okY)
		checks = append(checks, types.CorrelationCheck{
			A:         t.A,
			B:         t.B,
			Target:    t.R,
			Achieved:  r,
			Tolerance: t.Tol(),
			N:         n,
			Status:    ClassifyCorrelation(t.R, r, t.Tol()),
			Undefined: math.IsNaN(r),
		})
	}
	return checks
}
