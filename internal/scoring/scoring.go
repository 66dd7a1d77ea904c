// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring aggregates item responses into subscale and total scores.
package scoring

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Options controls how partially answered subscales are scored.
type Options struct {
	// MinItems is the least number of answered items a subscale needs.
	// Values below 1 are treated as 1, so any answered item yields a score.
	MinItems int
}

// Score fills Respondent.Scores for every respondent in ds: one entry per
// subscale ("INSTR.SUB") and one per instrument total ("INSTR"). Existing
// scores are replaced.
func Score(ds *types.Dataset, opts Options) {
	for i := range ds.Respondents {
		r := &ds.Respondents[i]
		r.Scores = make(map[string]*float64)
		for _, in := range ds.Instruments {
			ScoreInstrument(r, in, opts)
		}
	}
}

// ScoreInstrument computes the subscale and total scores of one instrument
// for one respondent.
func ScoreInstrument(r *types.Respondent, in types.Instrument, opts Options) {
	if r.Scores == nil {
		r.Scores = make(map[string]*float64)
	}
	minItems := opts.MinItems
	if minItems < 1 {
		minItems = 1
	}

	var subscores []float64
	for _, sub := range in.Subscales {
		var keyed []int
		for _, it := range in.ItemsOf(sub.Name) {
			v := r.Responses[it.ID]
			if v == nil {
				continue
			}
			keyed = append(keyed, Keyed(*v, it, in.Scale))
		}

		name := types.SubscaleVar(in.Name, sub.Name)
		if len(keyed) < minItems {
			r.Scores[name] = nil
			continue
		}
		s := aggregate(toFloats(keyed), sub.Rule)
		r.Scores[name] = types.FloatPtr(s)
		subscores = append(subscores, s)
	}

	if len(subscores) == 0 {
		r.Scores[in.Name] = nil
		return
	}
	r.Scores[in.Name] = types.FloatPtr(aggregate(subscores, in.TotalRule))
}

// Keyed returns v in the construct direction: reverse-keyed items are
// inverted, other items pass through.
func Keyed(v int, it types.Item, scale types.ScaleRange) int {
	if it.Reverse {
		return scale.Reverse(v)
	}
	return v
}

// ReverseColumn inverts every present value of a column. Applying it twice
// returns the original column.
func ReverseColumn(col []*int, scale types.ScaleRange) []*int {
	out := make([]*int, len(col))
	for i, v := range col {
		if v != nil {
			out[i] = types.IntPtr(scale.Reverse(*v))
		}
	}
	return out
}

// Bounds returns the theoretical minimum and maximum of a score variable
// (a subscale "INSTR.SUB" or a total "INSTR") of instrument in.
func Bounds(in types.Instrument, variable string) (lo, hi float64, ok bool) {
	lo, hi = float64(in.Scale.Min), float64(in.Scale.Max)
	for _, sub := range in.Subscales {
		if types.SubscaleVar(in.Name, sub.Name) != variable {
			continue
		}
		if sub.Rule == types.ScoreSum {
			k := float64(len(in.ItemsOf(sub.Name)))
			return k * lo, k * hi, true
		}
		return lo, hi, true
	}
	if variable != in.Name {
		return 0, 0, false
	}

	var los, his []float64
	for _, sub := range in.Subscales {
		l, h, _ := Bounds(in, types.SubscaleVar(in.Name, sub.Name))
		los = append(los, l)
		his = append(his, h)
	}
	if len(los) == 0 {
		return lo, hi, true
	}
	return aggregate(los, in.TotalRule), aggregate(his, in.TotalRule), true
}

func aggregate(values []float64, rule types.ScoringRule) float64 {
	sum := floats.Sum(values)
	if rule == types.ScoreSum {
		return sum
	}
	return sum / float64(len(values))
}

func toFloats(vs []int) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}
