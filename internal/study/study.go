// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package study loads and validates study definitions: the instruments,
// target correlations, demographics and hypotheses of one simulation.
package study

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thesis-engine/internal/demographics"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// DefaultFile is the study file name the CLI looks for.
const DefaultFile = "study.yaml"

// Load reads a study file and validates it. JSON files are accepted since
// JSON is valid YAML.
func Load(path string) (*types.Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading study: %w", err)
	}
	var s types.Study
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing study %s: %w", filepath.Base(path), err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the study for structural errors. Everything it rejects is
// a *types.ConfigError.
func Validate(s *types.Study) error {
	if len(s.Instruments) == 0 {
		return types.Configf("instruments", "at least one instrument is required")
	}
	itemIDs := make(map[string]string)
	names := make(map[string]bool)
	for _, in := range s.Instruments {
		if err := validateInstrument(in, itemIDs); err != nil {
			return err
		}
		if names[in.Name] {
			return types.Configf("instruments."+in.Name, "duplicate instrument")
		}
		names[in.Name] = true
	}

	if err := demographics.Validate(s.Demographics); err != nil {
		return err
	}
	categorical := make(map[string]bool)
	levels := make(map[string]map[string]bool)
	for _, d := range s.Demographics {
		if names[d.Name] || itemIDs[d.Name] != "" {
			return types.Configf("demographics."+d.Name, "name collides with an instrument or item")
		}
		if d.Kind == types.DemographicCategorical {
			categorical[d.Name] = true
			levels[d.Name] = make(map[string]bool)
			for _, c := range d.Categories {
				levels[d.Name][c.Name] = true
			}
		}
	}

	known := make(map[string]bool)
	for _, v := range Variables(s) {
		known[v] = true
	}
	pairs := make(map[string]int)
	for i, t := range s.Targets {
		field := fmt.Sprintf("targets[%d]", i)
		for _, v := range []string{t.A, t.B} {
			switch {
			case categorical[v]:
				return types.Configf(field, "categorical demographic %q cannot be a correlation target", v)
			case !known[v]:
				return types.Configf(field, "unknown variable %q", v)
			}
		}
		if t.A == t.B {
			return types.Configf(field, "pairs %q with itself", t.A)
		}
		if math.IsNaN(t.R) || t.R < -1 || t.R > 1 {
			return types.Configf(field, "coefficient %v outside [-1, 1]", t.R)
		}
		if t.Tolerance < 0 {
			return types.Configf(field, "negative tolerance %v", t.Tolerance)
		}
		key := types.PairKey(t.A, t.B)
		if prev, dup := pairs[key]; dup {
			return types.Configf(field, "pair %s already targeted by targets[%d]", key, prev)
		}
		pairs[key] = i
	}

	hypIDs := make(map[string]bool)
	for _, h := range s.Hypotheses {
		field := "hypotheses." + h.ID
		if h.ID == "" {
			return types.Configf("hypotheses", "hypothesis without an id")
		}
		if hypIDs[h.ID] {
			return types.Configf(field, "duplicate hypothesis")
		}
		hypIDs[h.ID] = true
		switch h.Test {
		case types.TestCorrelation:
			if math.IsNaN(h.EffectSize) || math.Abs(h.EffectSize) >= 1 {
				return types.Configf(field, "correlation effect size %v outside (-1, 1)", h.EffectSize)
			}
			if len(h.Variables) != 0 && len(h.Variables) != 2 {
				return types.Configf(field, "variables must name exactly two variables")
			}
			for _, v := range h.Variables {
				if !known[v] {
					return types.Configf(field, "unknown variable %q", v)
				}
			}
		case types.TestTwoGroup:
			if math.IsNaN(h.EffectSize) || math.IsInf(h.EffectSize, 0) {
				return types.Configf(field, "effect size must be finite")
			}
			if h.Outcome != "" && !known[h.Outcome] {
				return types.Configf(field, "unknown outcome %q", h.Outcome)
			}
			if h.Group != "" && !categorical[h.Group] {
				return types.Configf(field, "group %q is not a categorical demographic", h.Group)
			}
			if len(h.Levels) != 0 {
				if len(h.Levels) != 2 || h.Levels[0] == h.Levels[1] {
					return types.Configf(field, "levels must name two distinct categories")
				}
				for _, l := range h.Levels {
					if !levels[h.Group][l] {
						return types.Configf(field, "group %q has no category %q", h.Group, l)
					}
				}
			}
		default:
			return types.Configf(field, "unknown test %q", h.Test)
		}
		if h.Alpha < 0 || h.Alpha >= 1 {
			return types.Configf(field, "alpha %v outside (0, 1)", h.Alpha)
		}
	}
	for i, t := range s.Targets {
		if t.Hypothesis != "" && !hypIDs[t.Hypothesis] {
			return types.Configf(fmt.Sprintf("targets[%d]", i), "unknown hypothesis %q", t.Hypothesis)
		}
	}
	return nil
}

func validateInstrument(in types.Instrument, itemIDs map[string]string) error {
	field := "instruments." + in.Name
	if in.Name == "" || strings.Contains(in.Name, ".") {
		return types.Configf("instruments", "invalid instrument name %q", in.Name)
	}
	if in.Scale.Min >= in.Scale.Max {
		return types.Configf(field+".scale", "min %d must be below max %d", in.Scale.Min, in.Scale.Max)
	}
	if !in.TotalRule.Valid() {
		return types.Configf(field+".total_rule", "unknown rule %q", in.TotalRule)
	}
	if len(in.Subscales) == 0 {
		return types.Configf(field, "at least one subscale is required")
	}

	subs := make(map[string]int)
	for _, sub := range in.Subscales {
		if sub.Name == "" || strings.Contains(sub.Name, ".") {
			return types.Configf(field, "invalid subscale name %q", sub.Name)
		}
		if _, dup := subs[sub.Name]; dup {
			return types.Configf(field, "duplicate subscale %q", sub.Name)
		}
		subs[sub.Name] = 0
		if !sub.Rule.Valid() {
			return types.Configf(field+"."+sub.Name, "unknown rule %q", sub.Rule)
		}
		if math.IsNaN(sub.NoiseScale) || sub.NoiseScale < 0 {
			return types.Configf(field+"."+sub.Name, "noise scale %v must be non-negative", sub.NoiseScale)
		}
		if math.IsNaN(sub.Skew) || math.IsInf(sub.Skew, 0) {
			return types.Configf(field+"."+sub.Name, "skew must be finite")
		}
	}

	for _, it := range in.Items {
		if it.ID == "" {
			return types.Configf(field, "item without an id")
		}
		if owner, dup := itemIDs[it.ID]; dup {
			return types.Configf(field, "item %q already defined by %s", it.ID, owner)
		}
		itemIDs[it.ID] = in.Name
		if _, ok := subs[it.Subscale]; !ok {
			return types.Configf(field, "item %q names unknown subscale %q", it.ID, it.Subscale)
		}
		subs[it.Subscale]++
	}
	for _, sub := range in.Subscales {
		if subs[sub.Name] == 0 {
			return types.Configf(field, "subscale %q has no items", sub.Name)
		}
	}
	return nil
}

// Variables lists every variable a target may name: each instrument's
// subscales and total, then the numeric demographics.
func Variables(s *types.Study) []string {
	ds := types.Dataset{Instruments: s.Instruments}
	return append(ds.ScoreVars(), demographics.Numeric(s.Demographics)...)
}

// WriteSample writes an annotated example study to path. It refuses to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(Sample())
	if err != nil {
		return fmt.Errorf("encoding sample study: %w", err)
	}
	header := "# Study definition for thesis-engine.\n" +
		"# Targets name subscales (INSTR.SUB), totals (INSTR) or numeric demographics.\n"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// Sample returns a small study relating emotional intelligence, job
// satisfaction and burnout.
func Sample() *types.Study {
	return &types.Study{
		Title: "Emotional intelligence, job satisfaction and burnout among nurses",
		Instruments: []types.Instrument{
			{
				Name:        "EI",
				Description: "Emotional intelligence",
				Scale:       types.ScaleRange{Min: 1, Max: 5},
				Subscales: []types.Subscale{
					{Name: "Awareness", Rule: types.ScoreMean},
					{Name: "Regulation", Rule: types.ScoreMean},
				},
				Items: []types.Item{
					{ID: "EI01", Subscale: "Awareness", Text: "I know why my emotions change."},
					{ID: "EI02", Subscale: "Awareness", Text: "I notice how others feel."},
					{ID: "EI03", Subscale: "Awareness", Reverse: true, Text: "I am often confused about what I feel."},
					{ID: "EI04", Subscale: "Awareness", Text: "I can name my feelings."},
					{ID: "EI05", Subscale: "Regulation", Text: "I stay calm under pressure."},
					{ID: "EI06", Subscale: "Regulation", Reverse: true, Text: "I lose my temper easily."},
					{ID: "EI07", Subscale: "Regulation", Text: "I can cheer myself up."},
					{ID: "EI08", Subscale: "Regulation", Text: "I recover quickly from setbacks."},
				},
				TotalRule: types.ScoreMean,
			},
			{
				Name:        "JS",
				Description: "Job satisfaction",
				Scale:       types.ScaleRange{Min: 1, Max: 7},
				Subscales:   []types.Subscale{{Name: "Overall", Rule: types.ScoreMean}},
				Items: []types.Item{
					{ID: "JS01", Subscale: "Overall", Text: "I am satisfied with my job."},
					{ID: "JS02", Subscale: "Overall", Text: "I would recommend my workplace."},
					{ID: "JS03", Subscale: "Overall", Reverse: true, Text: "I often think about quitting."},
					{ID: "JS04", Subscale: "Overall", Text: "My work is meaningful."},
					{ID: "JS05", Subscale: "Overall", Text: "I feel valued at work."},
				},
			},
			{
				Name:        "BO",
				Description: "Burnout",
				Scale:       types.ScaleRange{Min: 1, Max: 5},
				Subscales:   []types.Subscale{{Name: "Exhaustion", Rule: types.ScoreMean, Skew: 0.5}},
				Items: []types.Item{
					{ID: "BO01", Subscale: "Exhaustion", Text: "I feel drained at the end of a shift."},
					{ID: "BO02", Subscale: "Exhaustion", Text: "I dread going to work."},
					{ID: "BO03", Subscale: "Exhaustion", Text: "I feel used up."},
					{ID: "BO04", Subscale: "Exhaustion", Reverse: true, Text: "I have plenty of energy at work."},
				},
			},
		},
		Targets: []types.TargetCorrelation{
			{A: "EI", B: "JS", R: 0.45, Hypothesis: "H1"},
			{A: "EI", B: "BO", R: -0.35, Hypothesis: "H2"},
			{A: "JS", B: "BO", R: -0.50},
			{A: "age", B: "JS", R: 0.15, Tolerance: 0.20},
		},
		Demographics: []types.Demographic{
			{Name: "age", Kind: types.DemographicNumeric, Mean: 36, Std: 9, Min: 21, Max: 65, Integer: true},
			{Name: "gender", Kind: types.DemographicCategorical, Categories: []types.Category{
				{Name: "female", Weight: 0.8},
				{Name: "male", Weight: 0.2},
			}},
		},
		Hypotheses: []types.Hypothesis{
			{ID: "H1", Test: types.TestCorrelation, EffectSize: 0.45, Primary: true,
				Description: "Emotional intelligence is positively related to job satisfaction."},
			{ID: "H2", Test: types.TestCorrelation, EffectSize: -0.35,
				Description: "Emotional intelligence is negatively related to burnout."},
			{ID: "H3", Test: types.TestTwoGroup, EffectSize: 0.30,
				Outcome: "BO", Group: "gender", Levels: []string{"female", "male"},
				Description: "Burnout differs between female and male employees."},
		},
	}
}
