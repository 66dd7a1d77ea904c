// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/artifacts"
	"github.com/pdiddy/thesis-engine/internal/ledger"
	"github.com/pdiddy/thesis-engine/internal/simulate"
	"github.com/pdiddy/thesis-engine/internal/study"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a dataset for a study and validate it",
	Long: `Simulate reads a study definition (instruments, target correlations,
demographics, hypotheses), generates N respondents that follow the target
correlation structure, contaminates them with careless responding and
missing answers, scores them and runs the validation gate.

Data tables go to <out>/data/, the feasibility report to <out>/feasibility/.
The run is recorded in the ledger unless --no-ledger is set.`,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	bindFlags(cmd.Flags())
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	studyPath, _ := cmd.Flags().GetString("study")
	s, err := study.Load(studyPath)
	if err != nil {
		return err
	}

	res, err := simulate.Run(cmd.Context(), s, cfg, progressWriter(cmd.Flags()))
	if err != nil {
		return err
	}
	res.Report.GeneratedAt = time.Now().UTC()

	return finish(cmd, finishInput{
		mode:       ledger.ModeSimulate,
		studyTitle: studyTitle(s, studyPath),
		cfg:        cfg,
		bundle: artifacts.Bundle{
			Title:      s.Title,
			Dataset:    res.Dataset,
			Parameters: &res.Parameters,
			Matrix:     res.Matrix,
			Latent:     res.Latent,
			Report:     res.Report,
			Analysis:   &res.Analysis,
		},
	})
}

type finishInput struct {
	mode       string
	studyTitle string
	cfg        types.PipelineConfig
	bundle     artifacts.Bundle
}

// finish writes artifacts, records the run, and prints the verdict. Shared
// by simulate and validate.
func finish(cmd *cobra.Command, in finishInput) error {
	progress := progressWriter(cmd.Flags())
	if _, err := artifacts.Write(in.cfg.OutputDir, in.bundle, progress); err != nil {
		return err
	}

	noLedger, _ := cmd.Flags().GetBool("no-ledger")
	if !noLedger {
		if err := recordRun(cmd, in, progress); err != nil {
			return err
		}
	}

	report := in.bundle.Report
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report.JSONSafe()); err != nil {
			return err
		}
	} else {
		renderCorrelations(os.Stdout, report.Correlations)
		if in.bundle.Analysis != nil {
			renderTests(os.Stdout, in.bundle.Analysis.Tests)
		}
		renderVerdict(os.Stdout, report)
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict && report.Verdict == types.VerdictRegenerate {
		return fmt.Errorf("verdict is regenerate")
	}
	return nil
}

func recordRun(cmd *cobra.Command, in finishInput, w io.Writer) error {
	store, err := ledger.NewStore(in.cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := ledger.NewRun(in.mode, in.studyTitle, in.bundle.Parameters, in.bundle.Report, in.cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := store.Record(cmd.Context(), run); err != nil {
		return err
	}
	fmt.Fprintf(w, "recorded run %s\n", run.ID)
	return nil
}

func studyTitle(s *types.Study, path string) string {
	if s.Title != "" {
		return s.Title
	}
	return filepath.Base(path)
}

// addOutputFlags registers the flags shared by simulate and validate.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("study", filepath.Join("inputs", study.DefaultFile), "study definition (YAML or JSON)")
	cmd.Flags().Int("min-items", 1, "answered items a subscale needs to be scored")
	cmd.Flags().String("out", "outputs", "output directory")
	cmd.Flags().String("ledger", filepath.Join("outputs", "runs.db"), "run ledger database")
	cmd.Flags().Bool("no-ledger", false, "do not record the run")
	cmd.Flags().Bool("json", false, "print the validation report as JSON")
	cmd.Flags().Bool("strict", false, "exit non-zero when the verdict is regenerate")
}

func init() {
	addOutputFlags(simulateCmd)
	simulateCmd.Flags().Int64("seed", 42, "random seed")
	simulateCmd.Flags().IntP("sample-size", "n", 100, "sample size")
	simulateCmd.Flags().Float64("noise", 0.25, "item noise as a fraction of the scale width")
	simulateCmd.Flags().Float64("within-r", 0.5, "default correlation between subscales of one instrument")
	simulateCmd.Flags().String("psd-policy", string(types.PSDClip), "non-PSD target handling: clip or fail")
	simulateCmd.Flags().Float64("careless", 0.03, "share of careless respondents")
	simulateCmd.Flags().Float64("missing", 0.02, "per-cell missing probability")

	rootCmd.AddCommand(simulateCmd)
}
