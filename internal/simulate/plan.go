// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package simulate

import (
	"math"

	"github.com/pdiddy/thesis-engine/internal/correlation"
	"github.com/pdiddy/thesis-engine/internal/demographics"
	"github.com/pdiddy/thesis-engine/internal/items"
	"github.com/pdiddy/thesis-engine/internal/sampler"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// MaxLatentR bounds a resolved latent coefficient away from ±1.
const MaxLatentR = 0.99

// Plan is the latent sampling layout of a study. Subscales are the sampled
// constructs; instrument totals are derived by the scorer, so targets that
// name a total are resolved onto its subscales.
type Plan struct {
	// Structure is the correlation matrix of the study's own targets, after
	// the PSD policy. It is nil when the study declares no targets.
	Structure *types.CorrelationMatrix

	// Vars lists the latent variables: every subscale in instrument order,
	// then the numeric demographics.
	Vars []string

	// Targets holds the resolved latent correlations, one per pair.
	Targets []types.TargetCorrelation

	// Marginals maps every latent variable to its observed scale.
	Marginals map[string]sampler.Marginal

	// Reliability is the expected reliability of each variable's observed
	// score. Latent targets are disattenuated by it.
	Reliability map[string]float64

	// NoiseScale is the item noise of every subscale variable.
	NoiseScale map[string]float64
}

// NewPlan resolves the study's targets into latent correlations.
//
// A target naming an instrument total applies to each of its subscales,
// scaled by √(k(1+(k−1)ρ))/k for k subscales at the within-instrument
// correlation ρ, so the derived total lands on the target. Every
// coefficient is then divided by √(rel_a·rel_b) to undo the attenuation of
// item noise. Targets naming a subscale directly win over propagated ones.
// Subscale pairs of one instrument that no target names get ρ.
//
// The PSD policy applies to the targets as the study states them. Under the
// fail policy a non-PSD set is an error; under clip the corrected
// coefficients are what gets resolved.
func NewPlan(s *types.Study, cfg types.SimulationConfig) (*Plan, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	targets, structure, err := checkTargets(s.Targets, cfg.PSDPolicy)
	if err != nil {
		return nil, err
	}
	p := &Plan{
		Structure:   structure,
		Marginals:   make(map[string]sampler.Marginal),
		Reliability: make(map[string]float64),
		NoiseScale:  make(map[string]float64),
	}

	subsOf := make(map[string][]string)
	for _, in := range s.Instruments {
		for _, sub := range in.Subscales {
			v := types.SubscaleVar(in.Name, sub.Name)
			noise := sub.NoiseScale
			if noise <= 0 {
				noise = cfg.NoiseScale
			}
			p.Vars = append(p.Vars, v)
			p.Marginals[v] = sampler.Ordinal(in.Scale, sub.Skew)
			p.NoiseScale[v] = noise
			p.Reliability[v] = items.ExpectedReliability(len(in.ItemsOf(sub.Name)), in.Scale, noise)
			subsOf[in.Name] = append(subsOf[in.Name], v)
		}
	}
	for name, mg := range demographics.Marginals(s.Demographics) {
		p.Marginals[name] = mg
		p.Reliability[name] = 1
	}
	p.Vars = append(p.Vars, demographics.Numeric(s.Demographics)...)

	expand := func(v string) ([]string, float64) {
		subs, ok := subsOf[v]
		if !ok {
			return []string{v}, 1
		}
		k := float64(len(subs))
		return subs, math.Sqrt(math.Max(0, k*(1+(k-1)*cfg.WithinInstrumentR))) / k
	}

	resolved := make(map[string]types.TargetCorrelation)
	var order []string
	set := func(a, b string, r, tol float64, hyp string) {
		key := types.PairKey(a, b)
		if _, seen := resolved[key]; !seen {
			order = append(order, key)
		}
		resolved[key] = types.TargetCorrelation{A: a, B: b, R: r, Tolerance: tol, Hypothesis: hyp}
	}
	apply := func(propagated bool) {
		for _, t := range targets {
			_, totalA := subsOf[t.A]
			_, totalB := subsOf[t.B]
			if (totalA || totalB) != propagated {
				continue
			}
			as, wa := expand(t.A)
			bs, wb := expand(t.B)
			for _, a := range as {
				for _, b := range bs {
					if a == b {
						continue
					}
					r := t.R * wa * wb / math.Sqrt(p.Reliability[a]*p.Reliability[b])
					set(a, b, clampR(r), t.Tolerance, t.Hypothesis)
				}
			}
		}
	}
	apply(true)
	apply(false)

	for _, in := range s.Instruments {
		subs := subsOf[in.Name]
		for i := range subs {
			for j := i + 1; j < len(subs); j++ {
				if _, seen := resolved[types.PairKey(subs[i], subs[j])]; !seen {
					set(subs[i], subs[j], cfg.WithinInstrumentR, 0, "")
				}
			}
		}
	}

	for _, key := range order {
		p.Targets = append(p.Targets, resolved[key])
	}
	return p, nil
}

// checkTargets builds the matrix of the stated targets under policy and
// returns the targets carrying its (possibly corrected) coefficients.
func checkTargets(targets []types.TargetCorrelation, policy types.PSDPolicy) ([]types.TargetCorrelation, *types.CorrelationMatrix, error) {
	if len(targets) == 0 {
		return nil, nil, nil
	}
	m, err := correlation.Build(targets, nil, policy)
	if err != nil {
		return nil, nil, err
	}
	if !m.Corrected {
		return targets, m, nil
	}
	out := make([]types.TargetCorrelation, len(targets))
	for i, t := range targets {
		t.R, _ = m.Get(t.A, t.B)
		out[i] = t
	}
	return out, m, nil
}

func clampR(r float64) float64 {
	return math.Max(-MaxLatentR, math.Min(MaxLatentR, r))
}

func validateConfig(cfg types.SimulationConfig) error {
	if cfg.SampleSize <= 0 {
		return types.Configf("simulation.sample_size", "must be positive, got %d", cfg.SampleSize)
	}
	if math.IsNaN(cfg.NoiseScale) || cfg.NoiseScale < 0 {
		return types.Configf("simulation.noise_scale", "must be non-negative, got %v", cfg.NoiseScale)
	}
	if math.IsNaN(cfg.WithinInstrumentR) || cfg.WithinInstrumentR <= -1 || cfg.WithinInstrumentR >= 1 {
		return types.Configf("simulation.within_instrument_r", "must be within (-1, 1), got %v", cfg.WithinInstrumentR)
	}
	switch cfg.PSDPolicy {
	case types.PSDFail, types.PSDClip:
	default:
		return types.Configf("simulation.psd_policy", "unknown policy %q", cfg.PSDPolicy)
	}
	return nil
}
