// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validation

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// CronbachAlpha computes alpha from item columns of equal length:
//
//	alpha = k/(k−1) · (1 − Σ var(item) / var(Σ items))
//
// It returns NaN for fewer than two items, fewer than two rows, or a summed
// score without variance.
func CronbachAlpha(cols [][]float64) float64 {
	k := len(cols)
	if k < 2 {
		return math.NaN()
	}
	n := len(cols[0])
	if n < 2 {
		return math.NaN()
	}

	totals := make(stats.Float64Data, n)
	var itemVar float64
	for _, col := range cols {
		if len(col) != n {
			return math.NaN()
		}
		v, err := stats.SampleVariance(col)
		if err != nil {
			return math.NaN()
		}
		itemVar += v
		for i, x := range col {
			totals[i] += x
		}
	}

	totalVar, err := stats.SampleVariance(totals)
	if err != nil || totalVar == 0 {
		return math.NaN()
	}
	kf := float64(k)
	return kf / (kf - 1) * (1 - itemVar/totalVar)
}

// ClassifyAlpha maps alpha onto the conventional reliability bands. Each
// band's lower bound is inclusive, so 0.69 is questionable.
func ClassifyAlpha(alpha float64) types.ReliabilityStatus {
	switch {
	case math.IsNaN(alpha):
		return types.ReliabilityUndefined
	case alpha >= 0.90:
		return types.ReliabilityExcellent
	case alpha >= 0.80:
		return types.ReliabilityGood
	case alpha >= 0.70:
		return types.ReliabilityAcceptable
	case alpha >= 0.60:
		return types.ReliabilityQuestionable
	default:
		return types.ReliabilityPoor
	}
}

// CheckReliability computes alpha for every subscale of ds. Reverse-keyed
// items are inverted first and respondents missing any item of the subscale
// are dropped (listwise deletion).
func CheckReliability(ds *types.Dataset) []types.ReliabilityCheck {
	var checks []types.ReliabilityCheck
	for _, in := range ds.Instruments {
		for _, sub := range in.Subscales {
			its := in.ItemsOf(sub.Name)
			cols := keyedComplete(ds, its, in.Scale)
			alpha := CronbachAlpha(cols)
			n := 0
			if len(cols) > 0 {
				n = len(cols[0])
			}
			checks = append(checks, types.ReliabilityCheck{
				Subscale:  types.SubscaleVar(in.Name, sub.Name),
				Items:     len(its),
				N:         n,
				Alpha:     alpha,
				Status:    ClassifyAlpha(alpha),
				Undefined: math.IsNaN(alpha),
			})
		}
	}
	return checks
}

// keyedComplete returns one column per item, holding keyed values of the
// respondents who answered every item.
func keyedComplete(ds *types.Dataset, its []types.Item, scale types.ScaleRange) [][]float64 {
	cols := make([][]float64, len(its))
	for _, r := range ds.Respondents {
		complete := true
		for _, it := range its {
			if v := r.Responses[it.ID]; v == nil {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for j, it := range its {
			v := *r.Responses[it.ID]
			if it.Reverse {
				v = scale.Reverse(v)
			}
			cols[j] = append(cols[j], float64(v))
		}
	}
	return cols
}
