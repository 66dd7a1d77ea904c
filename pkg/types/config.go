// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PSDPolicy selects what the correlation builder does with a target matrix
// that is not positive semi-definite.
type PSDPolicy string

const (
	// PSDFail rejects the matrix with ErrNonPositiveSemiDefinite.
	PSDFail PSDPolicy = "fail"

	// PSDClip replaces negative eigenvalues with a small positive floor and
	// rescales the result to a unit diagonal.
	PSDClip PSDPolicy = "clip"
)

// SimulationConfig holds settings for sampling and item expansion.
type SimulationConfig struct {
	// Seed makes the whole pipeline reproducible.
	Seed int64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	// SampleSize is the number of respondents N.
	SampleSize int `json:"sample_size" yaml:"sample_size" mapstructure:"sample_size"`

	// NoiseScale is the default item noise as a fraction of the range width
	// (default 0.25). Subscale.NoiseScale overrides it.
	NoiseScale float64 `json:"noise_scale" yaml:"noise_scale" mapstructure:"noise_scale"`

	// WithinInstrumentR is the correlation assumed between subscales of the
	// same instrument when no target names the pair (default 0.5).
	WithinInstrumentR float64 `json:"within_instrument_r" yaml:"within_instrument_r" mapstructure:"within_instrument_r"`

	// PSDPolicy selects fail or clip for invalid target matrices (default clip).
	PSDPolicy PSDPolicy `json:"psd_policy" yaml:"psd_policy" mapstructure:"psd_policy"`
}

// NoiseConfig holds the contamination rates of the noise injector.
type NoiseConfig struct {
	// CarelessRate is the fraction of respondents overwritten with
	// straight-lining or random responding (default 0.03).
	CarelessRate float64 `json:"careless_rate" yaml:"careless_rate" mapstructure:"careless_rate"`

	// MissingRate is the per-cell probability of a missing answer (default 0.02).
	MissingRate float64 `json:"missing_rate" yaml:"missing_rate" mapstructure:"missing_rate"`
}

// ScoringConfig holds scorer options.
type ScoringConfig struct {
	// MinItems is the least number of answered items a subscale needs to be
	// scored (default 1).
	MinItems int `json:"min_items" yaml:"min_items" mapstructure:"min_items"`
}

// ValidationConfig holds the thresholds of the validation gate.
type ValidationConfig struct {
	// Alpha is the default significance level for power estimates (0.05).
	Alpha float64 `json:"alpha" yaml:"alpha" mapstructure:"alpha"`

	// TargetPower is the power used for minimum sample size (0.80).
	TargetPower float64 `json:"target_power" yaml:"target_power" mapstructure:"target_power"`

	// FloorCeilingShare is the share at a scale end that raises a floor or
	// ceiling flag (0.15).
	FloorCeilingShare float64 `json:"floor_ceiling_share" yaml:"floor_ceiling_share" mapstructure:"floor_ceiling_share"`

	// SevereFloorCeilingShare marks a floor or ceiling flag as severe (0.30).
	SevereFloorCeilingShare float64 `json:"severe_floor_ceiling_share" yaml:"severe_floor_ceiling_share" mapstructure:"severe_floor_ceiling_share"`
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation" mapstructure:"simulation"`
	Noise      NoiseConfig      `json:"noise" yaml:"noise" mapstructure:"noise"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Validation ValidationConfig `json:"validation" yaml:"validation" mapstructure:"validation"`

	// OutputDir receives the data and feasibility artifacts.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// LedgerPath is the SQLite database that records runs.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path" mapstructure:"ledger_path"`
}

// DefaultPipelineConfig returns the defaults used when no config overrides them.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Simulation: SimulationConfig{
			Seed:              42,
			SampleSize:        100,
			NoiseScale:        0.25,
			WithinInstrumentR: 0.5,
			PSDPolicy:         PSDClip,
		},
		Noise: NoiseConfig{
			CarelessRate: 0.03,
			MissingRate:  0.02,
		},
		Scoring: ScoringConfig{
			MinItems: 1,
		},
		Validation: ValidationConfig{
			Alpha:                   0.05,
			TargetPower:             0.80,
			FloorCeilingShare:       0.15,
			SevereFloorCeilingShare: 0.30,
		},
		OutputDir:  "outputs",
		LedgerPath: "outputs/runs.db",
	}
}
