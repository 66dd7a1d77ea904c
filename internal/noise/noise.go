// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package noise contaminates a simulated dataset the way real survey data is
// contaminated: a share of careless respondents and cells missing completely
// at random.
package noise

import (
	"math"
	"math/rand"

	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Stream offsets keep the two passes on independent random sequences, so
// the missingness pattern for a seed does not depend on the careless pass.
const (
	carelessStream = 0x5ca1ab1e
	missingStream  = 0x0ddba11
)

// Summary reports what Inject changed.
type Summary struct {
	Careless     int `json:"careless" yaml:"careless"`
	StraightLine int `json:"straight_line" yaml:"straight_line"`
	Random       int `json:"random" yaml:"random"`
	MissingCells int `json:"missing_cells" yaml:"missing_cells"`
	TotalCells   int `json:"total_cells" yaml:"total_cells"`
}

// Inject applies careless-response contamination and then missingness to
// ds in place. The same dataset, config and seed always produce the same
// result. Rates outside [0, 1] are configuration errors.
func Inject(ds *types.Dataset, cfg types.NoiseConfig, seed int64) (Summary, error) {
	if err := validate(cfg); err != nil {
		return Summary{}, err
	}
	var s Summary
	Careless(ds, cfg.CarelessRate, rand.New(rand.NewSource(seed^carelessStream)), &s)
	Missing(ds, cfg.MissingRate, rand.New(rand.NewSource(seed^missingStream)), &s)

	logging.Debug("noise injected",
		"careless", s.Careless,
		"straight_line", s.StraightLine,
		"random", s.Random,
		"missing_cells", s.MissingCells,
		"total_cells", s.TotalCells)
	return s, nil
}

func validate(cfg types.NoiseConfig) error {
	if math.IsNaN(cfg.CarelessRate) || cfg.CarelessRate < 0 || cfg.CarelessRate > 1 {
		return types.Configf("noise.careless_rate", "must be within [0, 1], got %v", cfg.CarelessRate)
	}
	if math.IsNaN(cfg.MissingRate) || cfg.MissingRate < 0 || cfg.MissingRate > 1 {
		return types.Configf("noise.missing_rate", "must be within [0, 1], got %v", cfg.MissingRate)
	}
	return nil
}

// Careless picks round(rate·R) distinct respondents and overwrites their
// whole item vector. Each picked respondent is either straight-lined (one
// value repeated across every item of an instrument) or answers uniformly
// at random, with equal probability.
func Careless(ds *types.Dataset, rate float64, rng *rand.Rand, s *Summary) {
	n := len(ds.Respondents)
	count := int(math.Round(rate * float64(n)))
	if count == 0 {
		return
	}
	for _, idx := range rng.Perm(n)[:count] {
		r := &ds.Respondents[idx]
		if r.Responses == nil {
			r.Responses = make(map[string]*int)
		}
		if rng.Intn(2) == 0 {
			straightLine(r, ds.Instruments, rng)
			r.Careless = types.CarelessStraightLine
			s.StraightLine++
		} else {
			randomize(r, ds.Instruments, rng)
			r.Careless = types.CarelessRandom
			s.Random++
		}
		s.Careless++
	}
}

func straightLine(r *types.Respondent, instruments []types.Instrument, rng *rand.Rand) {
	for _, in := range instruments {
		v := uniform(in.Scale, rng)
		for _, it := range in.Items {
			r.Responses[it.ID] = types.IntPtr(v)
		}
	}
}

func randomize(r *types.Respondent, instruments []types.Instrument, rng *rand.Rand) {
	for _, in := range instruments {
		for _, it := range in.Items {
			r.Responses[it.ID] = types.IntPtr(uniform(in.Scale, rng))
		}
	}
}

func uniform(scale types.ScaleRange, rng *rand.Rand) int {
	return scale.Min + rng.Intn(scale.Max-scale.Min+1)
}

// Missing marks each (respondent, item) cell absent with probability rate.
// One draw is taken per cell in column order whether or not the cell is
// already missing, and a missing cell is never restored.
func Missing(ds *types.Dataset, rate float64, rng *rand.Rand, s *Summary) {
	ids := ds.ItemIDs()
	for i := range ds.Respondents {
		r := &ds.Respondents[i]
		for _, id := range ids {
			s.TotalCells++
			hit := rng.Float64() < rate
			v, ok := r.Responses[id]
			if !ok || v == nil {
				continue
			}
			if hit {
				r.Responses[id] = nil
				s.MissingCells++
			}
		}
	}
}
