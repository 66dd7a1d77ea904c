// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/artifacts"
	"github.com/pdiddy/thesis-engine/internal/ledger"
	"github.com/pdiddy/thesis-engine/internal/simulate"
	"github.com/pdiddy/thesis-engine/internal/study"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score and validate collected responses against a study",
	Long: `Validate reads raw responses from a CSV file (an id column, one column
per item, optional demographic columns, NA or blank for missing answers),
scores them with the study's instruments and runs the validation gate.

Nothing is generated: the report describes the data as supplied.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	responsesPath, _ := cmd.Flags().GetString("responses")
	if responsesPath == "" {
		return fmt.Errorf("--responses is required")
	}
	demographics := make([]string, len(s.Demographics))
	for i, d := range s.Demographics {
		demographics[i] = d.Name
	}
	ds, err := artifacts.ReadResponses(responsesPath, s.Instruments, demographics)
	if err != nil {
		return err
	}

	report := simulate.Evaluate(ds, s, cfg)
	report.GeneratedAt = time.Now().UTC()
	an := simulate.Analyze(ds, s, cfg, report)

	return finish(cmd, finishInput{
		mode:       ledger.ModeValidate,
		studyTitle: studyTitle(s, studyPath),
		cfg:        cfg,
		bundle: artifacts.Bundle{
			Title:    s.Title,
			Dataset:  ds,
			Report:   report,
			Analysis: &an,
		},
	})
}

func init() {
	addOutputFlags(validateCmd)
	validateCmd.Flags().String("responses", "", "raw responses CSV")

	rootCmd.AddCommand(validateCmd)
}
