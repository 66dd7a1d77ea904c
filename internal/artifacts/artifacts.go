// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifacts writes the data and feasibility files of a run and
// reads externally collected responses back in.
//
// Layout under the output directory:
//
//	data/demographics.csv
//	data/responses_raw.csv        answers as given, reverse items unkeyed
//	data/responses_coded.xlsx     Responses (keyed), Scores, Codebook sheets
//	data/scores.csv
//	data/simulation_parameters.json
//	feasibility/data_quality.json
//	feasibility/data_quality.yaml
//	feasibility/data_feasibility_report.md
//	feasibility/data_feasibility_report.html
//	analysis/descriptive_stats.json
//	analysis/hypothesis_tests.json
//	analysis/reliability.json
package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

const (
	dataDir        = "data"
	feasibilityDir = "feasibility"
	analysisDir    = "analysis"
)

// Bundle is what a run hands to Write. Parameters and both matrices are nil
// when the dataset was supplied externally; Analysis is nil when no
// analysis was run.
type Bundle struct {
	Title      string
	Dataset    *types.Dataset
	Parameters *types.SimulationParameters

	// Matrix is the structure of the study's targets; Latent the one the
	// sampler drew from.
	Matrix *types.CorrelationMatrix
	Latent *types.CorrelationMatrix

	Report   types.ValidationReport
	Analysis *types.Analysis
}

// parametersFile is the layout of simulation_parameters.json.
type parametersFile struct {
	types.SimulationParameters
	Matrix *types.CorrelationMatrix `json:"matrix,omitempty"`
	Latent *types.CorrelationMatrix `json:"latent_matrix,omitempty"`
}

type step struct {
	path  string
	write func(string) error
}

// Dirs returns the directories Write populates under outDir.
func Dirs(outDir string) []string {
	return []string{
		filepath.Join(outDir, dataDir),
		filepath.Join(outDir, feasibilityDir),
		filepath.Join(outDir, analysisDir),
	}
}

// Write writes every artifact of b under outDir and returns the paths in
// write order. Each written file is reported on w.
func Write(outDir string, b Bundle, w io.Writer) ([]string, error) {
	for _, d := range Dirs(outDir) {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	data := filepath.Join(outDir, dataDir)
	feas := filepath.Join(outDir, feasibilityDir)
	ds := b.Dataset
	report := b.Report.JSONSafe()
	md := FeasibilityMarkdown(b.Title, b.Report)

	steps := []step{
		{filepath.Join(data, "responses_raw.csv"), func(p string) error { return WriteCSV(p, ResponsesTable(ds, false)) }},
		{filepath.Join(data, "scores.csv"), func(p string) error { return WriteCSV(p, ScoresTable(ds)) }},
		{filepath.Join(data, "responses_coded.xlsx"), func(p string) error {
			return WriteWorkbook(p,
				[]string{"Responses", "Scores", "Codebook"},
				[]Table{ResponsesTable(ds, true), ScoresTable(ds), CodebookTable(ds)})
		}},
		{filepath.Join(feas, "data_quality.json"), func(p string) error { return WriteJSON(p, report) }},
		{filepath.Join(feas, "data_quality.yaml"), func(p string) error { return WriteYAML(p, report) }},
		{filepath.Join(feas, "data_feasibility_report.md"), func(p string) error { return os.WriteFile(p, md, 0o644) }},
		{filepath.Join(feas, "data_feasibility_report.html"), func(p string) error {
			return os.WriteFile(p, FeasibilityHTML(b.Title, md), 0o644)
		}},
	}
	if len(ds.Demographics) > 0 {
		steps = append(steps, step{filepath.Join(data, "demographics.csv"), func(p string) error { return WriteCSV(p, DemographicsTable(ds)) }})
	}
	if b.Parameters != nil {
		params := parametersFile{SimulationParameters: b.Parameters.JSONSafe(), Matrix: b.Matrix, Latent: b.Latent}
		steps = append(steps, step{filepath.Join(data, "simulation_parameters.json"), func(p string) error { return WriteJSON(p, params) }})
	}
	if b.Analysis != nil {
		an := b.Analysis.JSONSafe()
		dir := filepath.Join(outDir, analysisDir)
		steps = append(steps,
			step{filepath.Join(dir, "descriptive_stats.json"), func(p string) error { return WriteJSON(p, an.Descriptives) }},
			step{filepath.Join(dir, "hypothesis_tests.json"), func(p string) error { return WriteJSON(p, an.Tests) }},
			step{filepath.Join(dir, "reliability.json"), func(p string) error { return WriteJSON(p, an.Reliability) }},
		)
	}

	var written []string
	for _, s := range steps {
		if err := s.write(s.path); err != nil {
			return written, fmt.Errorf("writing %s: %w", filepath.Base(s.path), err)
		}
		fmt.Fprintf(w, "wrote %s\n", s.path)
		written = append(written, s.path)
	}
	return written, nil
}
