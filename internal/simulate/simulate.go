// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package simulate runs the data pipeline end to end: correlation structure,
// joint sample, item expansion, contamination, scoring and the validation
// gate. Every random stream derives from the configured seed, so a study
// and config always reproduce the same dataset.
package simulate

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pdiddy/thesis-engine/internal/analysis"
	"github.com/pdiddy/thesis-engine/internal/correlation"
	"github.com/pdiddy/thesis-engine/internal/demographics"
	"github.com/pdiddy/thesis-engine/internal/items"
	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/internal/noise"
	"github.com/pdiddy/thesis-engine/internal/sampler"
	"github.com/pdiddy/thesis-engine/internal/scoring"
	"github.com/pdiddy/thesis-engine/internal/study"
	"github.com/pdiddy/thesis-engine/internal/validation"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Stream offsets for the item and demographic generators. The sampler uses
// the seed itself and the noise injector derives its own streams.
const (
	itemStream        = 0x17e45
	demographicStream = 0xde4060
)

// respondentNamespace scopes the name-based respondent UUIDs.
var respondentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("thesis-engine/respondent"))

// RespondentID returns the stable id of respondent index i under seed.
func RespondentID(seed int64, i int) string {
	return uuid.NewSHA1(respondentNamespace, []byte(fmt.Sprintf("%d:%d", seed, i))).String()
}

// Result is everything a simulation run produced.
type Result struct {
	Plan *Plan

	// Matrix is the structure of the study's targets after the PSD policy,
	// nil without targets. Latent is the matrix the sampler drew from after
	// disattenuation and copula adjustment.
	Matrix *types.CorrelationMatrix
	Latent *types.CorrelationMatrix

	Dataset    *types.Dataset
	Noise      noise.Summary
	Parameters types.SimulationParameters
	Report     types.ValidationReport
	Analysis   types.Analysis
}

// Run simulates a dataset for s, validates and analyzes it. Progress lines
// go to w. Structural problems in the study or config, and non-PSD targets
// under the fail policy, are returned as errors; data-quality findings end
// up in Result.Report.
//
// The PSD policy governs the targets as stated. The latent structure
// derived from them is always repaired when it is not PSD, and the repair
// is reported through Parameters.LatentCorrected.
func Run(ctx context.Context, s *types.Study, cfg types.PipelineConfig, w io.Writer) (*Result, error) {
	if err := study.Validate(s); err != nil {
		return nil, err
	}
	sim := cfg.Simulation
	plan, err := NewPlan(s, sim)
	if err != nil {
		return nil, err
	}

	log := logging.With("study", s.Title, "seed", sim.Seed)
	if st := plan.Structure; st != nil && st.Corrected {
		fmt.Fprintf(w, "target correlations corrected (policy %s, min eigenvalue %.4f)\n", sim.PSDPolicy, st.MinEigenvalue)
		log.Warn("target correlation matrix corrected",
			"policy", string(sim.PSDPolicy),
			"min_eigenvalue", st.MinEigenvalue,
			"vars", st.Size())
	}

	m, err := correlation.Build(plan.Targets, plan.Vars, types.PSDClip)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "correlation structure: %d variables, %d targets, min eigenvalue %.4f\n",
		m.Size(), len(plan.Targets), m.MinEigenvalue)
	if m.Corrected {
		log.Warn("latent correlation structure corrected",
			"stage", "disattenuated",
			"min_eigenvalue", m.MinEigenvalue,
			"vars", m.Size())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sample, err := sampler.Draw(rand.New(rand.NewSource(sim.Seed)), m, sim.SampleSize, plan.Marginals)
	if err != nil {
		return nil, err
	}
	if sample.Latent.Corrected {
		log.Warn("latent correlation structure corrected",
			"stage", "copula",
			"min_eigenvalue", sample.Latent.MinEigenvalue,
			"vars", sample.Latent.Size())
	}
	latentCorrected := m.Corrected || sample.Latent.Corrected
	if latentCorrected {
		fmt.Fprintln(w, "latent correlation structure corrected")
	}
	ds := assemble(s, plan, sample, sim.Seed)
	fmt.Fprintf(w, "sampled %d respondents, %d items\n", len(ds.Respondents), len(ds.ItemIDs()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary, err := noise.Inject(ds, cfg.Noise, sim.Seed)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "noise: %d careless respondents, %d/%d cells missing\n",
		summary.Careless, summary.MissingCells, summary.TotalCells)

	report := Evaluate(ds, s, cfg)
	fmt.Fprintf(w, "validation: %s (%d concerns)\n", report.Verdict, len(report.Concerns))
	an := Analyze(ds, s, cfg, report)

	matrixCorrected := plan.Structure != nil && plan.Structure.Corrected
	log.Info("simulation complete",
		"respondents", len(ds.Respondents),
		"corrected", matrixCorrected,
		"latent_corrected", latentCorrected,
		"verdict", string(report.Verdict))

	return &Result{
		Plan:     plan,
		Matrix:   plan.Structure,
		Latent:   sample.Latent,
		Dataset:  ds,
		Noise:    summary,
		Analysis: an,
		Parameters: types.SimulationParameters{
			Seed:            sim.Seed,
			SampleSize:      sim.SampleSize,
			NoiseScale:      sim.NoiseScale,
			CarelessRate:    cfg.Noise.CarelessRate,
			MissingRate:     cfg.Noise.MissingRate,
			PSDPolicy:       sim.PSDPolicy,
			MatrixCorrected: matrixCorrected,
			LatentCorrected: latentCorrected,
			CarelessCount:   summary.Careless,
			MissingCells:    summary.MissingCells,
			Correlations:    report.Correlations,
		},
		Report: report,
	}, nil
}

// Evaluate scores ds and runs the validation gate against the study's
// targets and hypotheses. It also serves externally supplied datasets that
// bypass sampling.
func Evaluate(ds *types.Dataset, s *types.Study, cfg types.PipelineConfig) types.ValidationReport {
	scoring.Score(ds, scoring.Options{MinItems: cfg.Scoring.MinItems})
	return validation.Validate(validation.Input{
		Dataset:      ds,
		Targets:      s.Targets,
		Hypotheses:   s.Hypotheses,
		Config:       cfg.Validation,
		Demographics: s.Demographics,
	})
}

// Analyze runs descriptive statistics and the hypothesis tests on a scored
// dataset, carrying the gate's reliability checks along.
func Analyze(ds *types.Dataset, s *types.Study, cfg types.PipelineConfig, report types.ValidationReport) types.Analysis {
	return analysis.Analyze(analysis.Input{
		Dataset:      ds,
		Targets:      s.Targets,
		Hypotheses:   s.Hypotheses,
		Demographics: s.Demographics,
		Reliability:  report.Reliability,
		Alpha:        cfg.Validation.Alpha,
	})
}

// assemble expands the sampled subscale scores into items and attaches
// demographics.
func assemble(s *types.Study, plan *Plan, sample *sampler.Sample, seed int64) *types.Dataset {
	n := len(sample.Columns[0])
	ds := &types.Dataset{Instruments: s.Instruments, Respondents: make([]types.Respondent, n)}
	for _, d := range s.Demographics {
		ds.Demographics = append(ds.Demographics, d.Name)
	}
	for i := range ds.Respondents {
		ds.Respondents[i] = types.Respondent{
			ID:        RespondentID(seed, i),
			Responses: make(map[string]*int),
		}
	}

	rng := rand.New(rand.NewSource(seed ^ itemStream))
	for _, in := range s.Instruments {
		for _, sub := range in.Subscales {
			v := types.SubscaleVar(in.Name, sub.Name)
			its := in.ItemsOf(sub.Name)
			cols := items.Expand(rng, sample.Column(v), its, in.Scale, plan.NoiseScale[v])
			for j, it := range its {
				for i := range ds.Respondents {
					ds.Respondents[i].Responses[it.ID] = types.IntPtr(cols[j][i])
				}
			}
		}
	}

	demographics.Assign(rand.New(rand.NewSource(seed^demographicStream)), s.Demographics, sample, ds.Respondents)
	return ds
}
