// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	verdictStyles = map[types.Verdict]lipgloss.Style{
		types.VerdictProceed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		types.VerdictCaution:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		types.VerdictRegenerate: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
)

// renderVerdict prints the verdict line and the concerns.
func renderVerdict(w io.Writer, r types.ValidationReport) {
	style, ok := verdictStyles[r.Verdict]
	if !ok {
		style = headingStyle
	}
	fmt.Fprintf(w, "\n%s %s\n", headingStyle.Render("Verdict:"), style.Render(strings.ToUpper(string(r.Verdict))))
	if len(r.Concerns) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no concerns"))
		return
	}
	for _, c := range r.Concerns {
		fmt.Fprintf(w, "  - %s\n", c)
	}
}

// renderCorrelations prints the achieved-versus-target table.
func renderCorrelations(w io.Writer, checks []types.CorrelationCheck) {
	if len(checks) == 0 {
		return
	}
	fmt.Fprintln(w, headingStyle.Render("\nCorrelations"))
	fmt.Fprintf(w, "%-28s  %7s  %8s  %s\n", "Pair", "Target", "Achieved", "Status")
	fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("-", 58)))
	for _, c := range checks {
		achieved := "n/a"
		if !c.Undefined {
			achieved = fmt.Sprintf("%.3f", c.Achieved)
		}
		fmt.Fprintf(w, "%-28s  %7.2f  %8s  %s\n", c.A+" ~ "+c.B, c.Target, achieved, c.Status)
	}
}

// renderTests prints one line per hypothesis test.
func renderTests(w io.Writer, tests []types.HypothesisTest) {
	if len(tests) == 0 {
		return
	}
	fmt.Fprintln(w, headingStyle.Render("\nHypothesis tests"))
	for _, t := range tests {
		if t.Skipped != "" {
			fmt.Fprintf(w, "%-6s %s\n", t.Hypothesis, mutedStyle.Render("skipped: "+t.Skipped))
			continue
		}
		result := "not supported"
		if t.Supported {
			result = "supported"
		}
		fmt.Fprintf(w, "%-6s %-12s effect %6.3f  p %.4f  [%.3f, %.3f]  %s\n",
			t.Hypothesis, t.Test, t.Effect, t.PValue, t.CILow, t.CIHigh, result)
	}
}
