// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package study

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		instruments int
		wantErr     bool
		configErr   bool
	}{
		{
			name: "valid yaml",
			content: `title: Pilot
instruments:
  - name: WB
    scale: {min: 1, max: 5}
    subscales:
      - name: Mood
        rule: sum
    items:
      - {id: w1, subscale: Mood}
      - {id: w2, subscale: Mood, reverse: true}
  - name: ST
    scale: {min: 1, max: 7}
    subscales: [{name: Load}]
    items:
      - {id: s1, subscale: Load}
targets:
  - {a: WB, b: ST, r: -0.4}
hypotheses:
  - {id: H1, test: correlation, effect_size: -0.4, primary: true}
`,
			instruments: 2,
		},
		{
			name:        "json is yaml",
			content:     `{"instruments":[{"name":"A","scale":{"min":1,"max":4},"subscales":[{"name":"S"}],"items":[{"id":"a1","subscale":"S"}]}]}`,
			instruments: 1,
		},
		{
			name:    "malformed",
			content: ":::bad\n",
			wantErr: true,
		},
		{
			name:      "structurally invalid",
			content:   "instruments: []\n",
			wantErr:   true,
			configErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "study.yaml", tt.content)
			s, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.configErr, types.IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, s.Instruments, tt.instruments)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.False(t, types.IsConfigError(err))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *types.Study)
	}{
		{"duplicate item across instruments", func(s *types.Study) { s.Instruments[1].Items[0].ID = "EI01" }},
		{"item in unknown subscale", func(s *types.Study) { s.Instruments[0].Items[0].Subscale = "Nope" }},
		{"empty subscale", func(s *types.Study) {
			s.Instruments[0].Subscales = append(s.Instruments[0].Subscales, types.Subscale{Name: "Empty"})
		}},
		{"inverted scale", func(s *types.Study) { s.Instruments[0].Scale = types.ScaleRange{Min: 5, Max: 1} }},
		{"bad rule", func(s *types.Study) { s.Instruments[0].Subscales[0].Rule = "median" }},
		{"dotted name", func(s *types.Study) { s.Instruments[0].Name = "E.I" }},
		{"duplicate instrument", func(s *types.Study) { s.Instruments[1].Name = "EI" }},
		{"negative noise", func(s *types.Study) { s.Instruments[0].Subscales[0].NoiseScale = -0.1 }},
		{"unknown target variable", func(s *types.Study) { s.Targets[0].B = "XYZ" }},
		{"categorical target", func(s *types.Study) { s.Targets[0].B = "gender" }},
		{"item as target", func(s *types.Study) { s.Targets[0].B = "EI01" }},
		{"coefficient out of range", func(s *types.Study) { s.Targets[0].R = 1.2 }},
		{"self pair", func(s *types.Study) { s.Targets[0].B = "EI" }},
		{"unknown hypothesis link", func(s *types.Study) { s.Targets[0].Hypothesis = "H9" }},
		{"unknown test", func(s *types.Study) { s.Hypotheses[0].Test = "anova" }},
		{"duplicate hypothesis", func(s *types.Study) { s.Hypotheses[1].ID = "H1" }},
		{"correlation effect of one", func(s *types.Study) { s.Hypotheses[0].EffectSize = 1 }},
		{"bad category weights", func(s *types.Study) { s.Demographics[1].Categories[0].Weight = 0.5 }},
		{"demographic collides with instrument", func(s *types.Study) { s.Demographics[0].Name = "JS" }},
		{"pair targeted twice in reverse order", func(s *types.Study) {
			s.Targets = append(s.Targets, types.TargetCorrelation{A: "JS", B: "EI", R: -0.6})
		}},
		{"pair targeted twice", func(s *types.Study) {
			s.Targets = append(s.Targets, types.TargetCorrelation{A: "EI", B: "JS", R: 0.45})
		}},
		{"correlation with one variable", func(s *types.Study) { s.Hypotheses[0].Variables = []string{"EI"} }},
		{"correlation with unknown variable", func(s *types.Study) { s.Hypotheses[0].Variables = []string{"EI", "XYZ"} }},
		{"two-group unknown outcome", func(s *types.Study) { s.Hypotheses[2].Outcome = "XYZ" }},
		{"two-group numeric group", func(s *types.Study) { s.Hypotheses[2].Group = "age" }},
		{"two-group unknown level", func(s *types.Study) { s.Hypotheses[2].Levels = []string{"female", "other"} }},
		{"two-group repeated level", func(s *types.Study) { s.Hypotheses[2].Levels = []string{"male", "male"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sample()
			tt.mutate(s)
			err := Validate(s)
			require.Error(t, err)
			assert.True(t, types.IsConfigError(err), "%v", err)
		})
	}
}

func TestVariables(t *testing.T) {
	vars := Variables(Sample())
	assert.Equal(t, []string{"EI.Awareness", "EI.Regulation", "EI", "JS.Overall", "JS", "BO.Exhaustion", "BO", "age"}, vars)
}

func TestWriteSampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs", DefaultFile)
	require.NoError(t, WriteSample(path))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Sample(), s)

	assert.Error(t, WriteSample(path), "refuses to overwrite")
}
