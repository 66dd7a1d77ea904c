// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// WriteYAML writes v as YAML.
func WriteYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a data_quality.json or data_quality.yaml file.
func ReadReport(path string) (*types.ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r types.ValidationReport
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".json") {
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}

var recommendations = map[types.Verdict]string{
	types.VerdictProceed:    "The simulated data meets its targets. Proceed to analysis.",
	types.VerdictCaution:    "The data is usable, but the concerns below should be acknowledged in the methods chapter or addressed by a rerun.",
	types.VerdictRegenerate: "The data does not support the planned analysis. Adjust targets, sample size or noise and regenerate.",
}

// FeasibilityMarkdown renders the report as a markdown document.
func FeasibilityMarkdown(title string, r types.ValidationReport) []byte {
	var b bytes.Buffer
	if title == "" {
		title = "Data feasibility report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated %s.\n\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	}
	fmt.Fprintf(&b, "**Verdict: %s** (n = %d)\n\n%s\n\n", strings.ToUpper(string(r.Verdict)), r.SampleSize, recommendations[r.Verdict])

	if len(r.Concerns) > 0 {
		b.WriteString("## Concerns\n\n")
		for _, c := range r.Concerns {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	if len(r.Correlations) > 0 {
		b.WriteString("## Correlations\n\n| Pair | Target | Achieved | Tolerance | n | Status |\n|---|---|---|---|---|---|\n")
		for _, c := range r.Correlations {
			fmt.Fprintf(&b, "| %s ~ %s | %.2f | %s | %.2f | %d | %s |\n",
				c.A, c.B, c.Target, stat(c.Achieved, c.Undefined, 3), c.Tolerance, c.N, c.Status)
		}
		b.WriteString("\n")
	}

	if len(r.Reliability) > 0 {
		b.WriteString("## Reliability\n\n| Subscale | Items | n | Alpha | Status |\n|---|---|---|---|---|\n")
		for _, c := range r.Reliability {
			fmt.Fprintf(&b, "| %s | %d | %d | %s | %s |\n", c.Subscale, c.Items, c.N, stat(c.Alpha, c.Undefined, 3), c.Status)
		}
		b.WriteString("\n")
	}

	if len(r.Power) > 0 {
		b.WriteString("## Power\n\n| Hypothesis | Test | Effect | Alpha | Power | Min n (80%) | Primary |\n|---|---|---|---|---|---|---|\n")
		for _, c := range r.Power {
			minN := "-"
			if c.MinN > 0 {
				minN = fmt.Sprint(c.MinN)
			}
			fmt.Fprintf(&b, "| %s | %s | %.2f | %.2f | %s | %s | %t |\n",
				c.Hypothesis, c.Test, c.EffectSize, c.Alpha, stat(c.Power, c.Undefined, 3), minN, c.Primary)
		}
		b.WriteString("\n")
	}

	if len(r.Distribution) > 0 {
		b.WriteString("## Distributions\n\n| Variable | n | Mean | SD | Skew | Kurtosis | Floor | Ceiling | Flags |\n|---|---|---|---|---|---|---|---|---|\n")
		for _, c := range r.Distribution {
			flags := make([]string, len(c.Flags))
			for i, f := range c.Flags {
				flags[i] = string(f)
			}
			fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %.0f%% | %.0f%% | %s |\n",
				c.Variable, c.N, num(c.Mean, 2), num(c.SD, 2), num(c.Skewness, 2), num(c.Kurtosis, 2),
				100*c.FloorShare, 100*c.CeilingShare, strings.Join(flags, ", "))
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

// FeasibilityHTML renders the markdown report as a standalone HTML page.
func FeasibilityHTML(title string, md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML(md, p, r)
}

// stat formats a statistic that may have been zeroed for JSON after it
// came out undefined.
func stat(v float64, undefined bool, decimals int) string {
	if undefined {
		return "n/a"
	}
	return num(v, decimals)
}

func num(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", decimals, v)
}
