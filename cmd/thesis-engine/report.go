// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/artifacts"
)

var reportCmd = &cobra.Command{
	Use:   "report <data_quality.json|yaml>",
	Short: "Render a saved validation report",
	Long: `Report reads a data_quality.json or data_quality.yaml file written by
simulate or validate and prints the verdict, or renders the full feasibility
report as markdown or HTML.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	report, err := artifacts.ReadReport(args[0])
	if err != nil {
		return err
	}
	title, _ := cmd.Flags().GetString("title")
	format, _ := cmd.Flags().GetString("format")

	switch format {
	case "text":
		renderCorrelations(os.Stdout, report.Correlations)
		renderVerdict(os.Stdout, *report)
	case "markdown", "md":
		os.Stdout.Write(artifacts.FeasibilityMarkdown(title, *report))
	case "html":
		os.Stdout.Write(artifacts.FeasibilityHTML(title, artifacts.FeasibilityMarkdown(title, *report)))
	default:
		return fmt.Errorf("unknown format %q (text, markdown, html)", format)
	}
	return nil
}

func init() {
	reportCmd.Flags().String("format", "text", "output format: text, markdown or html")
	reportCmd.Flags().String("title", "", "report title")

	rootCmd.AddCommand(reportCmd)
}
